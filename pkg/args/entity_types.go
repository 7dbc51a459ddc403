package args

import (
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`[0-9]+`)

var (
	// UserArg accepts a member mention (<@id>, <@!id>) or a name#1234 tag.
	// Members without a tag (see Member.HasTag) can only be given by mention;
	// a bare username never matches.
	UserArg = NewType("User", "Users", `<@!?[0-9]+>|[^#\n]{2,32}#[0-9]{4}`, convertUser)

	// ChannelArg accepts a channel mention (<#id>) or #name.
	ChannelArg = NewType("Channel", "Channels", `<#[0-9]+>|#[^\s#]+`, convertChannel)

	// RoleArg accepts a role mention (<@&id>) or @name.
	RoleArg = NewType("Role", "Roles", `<@&[0-9]+>|@[^\s@]+`, convertRole)
)

func isMention(raw string) bool {
	return strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">")
}

func scopeName(r Resolver) string {
	if r == nil {
		return "this server"
	}
	return r.ScopeName()
}

func convertUser(r Resolver, raw string) (any, error) {
	var (
		m  *Member
		ok bool
	)
	if r != nil {
		if isMention(raw) {
			m, ok = r.MemberByID(idPattern.FindString(raw))
		} else {
			m, ok = r.MemberByTag(raw)
		}
	}
	if !ok {
		return nil, newError(ErrResolutionFailed, "%s isn't a member of %s.", raw, scopeName(r))
	}
	return m, nil
}

func convertChannel(r Resolver, raw string) (any, error) {
	var (
		c  *Channel
		ok bool
	)
	if r != nil {
		if isMention(raw) {
			c, ok = r.ChannelByID(idPattern.FindString(raw))
		} else {
			c, ok = r.ChannelByName(strings.TrimPrefix(raw, "#"))
		}
	}
	if !ok {
		return nil, newError(ErrResolutionFailed, "%s isn't a channel in %s.", raw, scopeName(r))
	}
	return c, nil
}

func convertRole(r Resolver, raw string) (any, error) {
	var (
		role *Role
		ok   bool
	)
	if r != nil {
		if isMention(raw) {
			role, ok = r.RoleByID(idPattern.FindString(raw))
		} else {
			role, ok = r.RoleByName(strings.TrimPrefix(raw, "@"))
		}
	}
	if !ok {
		return nil, newError(ErrResolutionFailed, "%s isn't a role in %s.", raw, scopeName(r))
	}
	return role, nil
}

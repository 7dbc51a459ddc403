// Package moderation provides permission-gated ban and kick commands.
package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/util"
)

// Moderator carries out moderation actions on the platform.
type Moderator interface {
	Ban(ctx context.Context, guildID, userID, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
}

// maxConcurrent caps the API calls one command fires at once.
const maxConcurrent = 3

type action struct {
	verb string // ban, kick
	past string // banned, kicked
	do   func(ctx context.Context, guildID, userID, reason string) error
}

// New builds the moderation plugin. selfID is the bot's own id, which it
// refuses to act on.
func New(mod Moderator, selfID func() string) (*plugin.Plugin, error) {
	ban := action{verb: "ban", past: "banned", do: mod.Ban}
	kick := action{verb: "kick", past: "kicked", do: mod.Kick}

	b := plugin.New("moderation").
		Command(&cmd.Command{
			Name:        "ban",
			Description: "Bans members from the server.",
			Args:        targetArgs(),
			Permissions: []cmd.Permission{cmd.PermissionBanMembers},
			Handler:     handler(ban, selfID),
		}).
		Command(&cmd.Command{
			Name:        "kick",
			Description: "Removes members from the server. They can rejoin with an invite.",
			Args:        targetArgs(),
			Permissions: []cmd.Permission{cmd.PermissionKickMembers},
			Handler:     handler(kick, selfID),
		})

	plugin.On(b, "audit-bans", func(_ context.Context, ev event.MemberBanEvent) error {
		if ev.GuildBanAdd == nil || ev.User == nil {
			return nil
		}
		b.Logger().Info().Str("guild", ev.GuildID).Str("user", ev.User.ID).Msg("member banned")
		return nil
	})
	return b.Build()
}

func targetArgs() []args.Spec {
	return []args.Spec{
		args.Arg("members", args.UserArg).Many().WithHelp("mentions or name#0000 tags"),
		args.Arg("reason", args.String).Optional(nil).Many(),
	}
}

func handler(a action, selfID func() string) cmd.Handler {
	return func(ctx context.Context, inv *cmd.Invocation) (string, error) {
		var targets []*args.Member
		seen := make(map[string]struct{})
		for _, v := range inv.Args.List("members") {
			m, ok := v.(*args.Member)
			if !ok {
				continue
			}
			switch m.ID {
			case inv.Actor.ID:
				return fmt.Sprintf("You can't %s yourself.", a.verb), nil
			case selfID():
				return fmt.Sprintf("I won't %s myself.", a.verb), nil
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			targets = append(targets, m)
		}

		reason := strings.Join(inv.Args.Strings("reason"), " ")
		auditReason := fmt.Sprintf("%s by %s", a.past, inv.Actor.Name)
		if reason != "" {
			auditReason += ": " + reason
		}

		errs := util.Parallel(ctx, targets, maxConcurrent, func(ctx context.Context, m *args.Member) error {
			return a.do(ctx, inv.GuildID, m.ID, auditReason)
		})

		var done, failed []string
		for i, m := range targets {
			if errs[i] != nil {
				failed = append(failed, fmt.Sprintf("**%s** (%v)", m.Tag(), errs[i]))
				continue
			}
			done = append(done, "**"+m.Tag()+"**")
		}

		var b strings.Builder
		if len(done) > 0 {
			fmt.Fprintf(&b, "%s %s.", upperFirst(a.past), strings.Join(done, ", "))
			if reason != "" {
				fmt.Fprintf(&b, " Reason: %s", reason)
			}
		}
		if len(failed) > 0 {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Couldn't %s %s.", a.verb, strings.Join(failed, ", "))
		}
		return b.String(), nil
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Package memscope is an in-memory chat platform: guilds, members, channels,
// roles and permission grants held in maps, replies captured in order. It
// backs the local console and the tests of everything above the Discord
// binding.
package memscope

import (
	"context"
	"fmt"
	"sync"

	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
)

// Guild is the seed data for one scope.
type Guild struct {
	ID       string
	Name     string
	Members  []*args.Member
	Channels []*args.Channel
	Roles    []*args.Role
}

// Reply is a message the platform was asked to send.
type Reply struct {
	ChannelID string
	Text      string
}

// Action is a moderation call the platform received.
type Action struct {
	Kind    string
	GuildID string
	UserID  string
	Reason  string
}

// Platform is safe for concurrent use.
type Platform struct {
	self string

	mu       sync.Mutex
	guilds   map[string]*Guild
	channels map[string]string // channel id -> guild id
	grants   map[string]map[cmd.Permission]struct{}
	replies  []Reply
	actions  []Action
	status   string
	onReply  func(Reply)
}

// Option configures a Platform.
type Option func(*Platform)

// WithReplyHook calls fn for every reply after it is recorded.
func WithReplyHook(fn func(Reply)) Option {
	return func(p *Platform) { p.onReply = fn }
}

// New creates an empty platform whose own user id is selfID.
func New(selfID string, opts ...Option) *Platform {
	p := &Platform{
		self:     selfID,
		guilds:   make(map[string]*Guild),
		channels: make(map[string]string),
		grants:   make(map[string]map[cmd.Permission]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddGuild registers g, replacing any guild with the same id.
func (p *Platform) AddGuild(g *Guild) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guilds[g.ID] = g
	for _, c := range g.Channels {
		p.channels[c.ID] = g.ID
	}
}

// Grant gives userID the permissions in every channel of guildID.
func (p *Platform) Grant(guildID, userID string, perms ...cmd.Permission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := guildID + "/" + userID
	set, ok := p.grants[key]
	if !ok {
		set = make(map[cmd.Permission]struct{})
		p.grants[key] = set
	}
	for _, perm := range perms {
		set[perm] = struct{}{}
	}
}

func (p *Platform) SelfID() string { return p.self }

// Scope returns a resolver over the guild as registered.
func (p *Platform) Scope(guildID string) (args.Resolver, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.guilds[guildID]
	if !ok {
		return nil, false
	}
	return scope{g}, true
}

// Replier records replies sent to channelID.
func (p *Platform) Replier(channelID string) cmd.Replier {
	return cmd.ReplierFunc(func(_ context.Context, text string) error {
		r := Reply{ChannelID: channelID, Text: text}
		p.mu.Lock()
		p.replies = append(p.replies, r)
		hook := p.onReply
		p.mu.Unlock()
		if hook != nil {
			hook(r)
		}
		return nil
	})
}

func (p *Platform) Permissions() cmd.PermissionChecker { return p }

// HasPermission looks up a grant in the channel's guild. Administrator
// implies every permission.
func (p *Platform) HasPermission(_ context.Context, actorID, channelID string, perm cmd.Permission) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	guildID, ok := p.channels[channelID]
	if !ok {
		return false, fmt.Errorf("unknown channel %q", channelID)
	}
	set := p.grants[guildID+"/"+actorID]
	if _, admin := set[cmd.PermissionAdministrator]; admin {
		return true, nil
	}
	_, has := set[perm]
	return has, nil
}

// Replies returns every reply recorded so far.
func (p *Platform) Replies() []Reply {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Reply(nil), p.replies...)
}

// TakeReplies returns the recorded replies and forgets them.
func (p *Platform) TakeReplies() []Reply {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.replies
	p.replies = nil
	return out
}

// Ban records a ban.
func (p *Platform) Ban(_ context.Context, guildID, userID, reason string) error {
	return p.act("ban", guildID, userID, reason)
}

// Kick records a kick.
func (p *Platform) Kick(_ context.Context, guildID, userID, reason string) error {
	return p.act("kick", guildID, userID, reason)
}

func (p *Platform) act(kind, guildID, userID, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.guilds[guildID]; !ok {
		return fmt.Errorf("%s: unknown guild %q", kind, guildID)
	}
	p.actions = append(p.actions, Action{Kind: kind, GuildID: guildID, UserID: userID, Reason: reason})
	return nil
}

// Actions returns the moderation calls recorded so far.
func (p *Platform) Actions() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Action(nil), p.actions...)
}

// SetStatus records the bot's presence text.
func (p *Platform) SetStatus(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = text
	return nil
}

// Status returns the last presence text set.
func (p *Platform) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

type scope struct{ g *Guild }

func (s scope) ScopeName() string { return s.g.Name }

func (s scope) MemberByID(id string) (*args.Member, bool) {
	for _, m := range s.g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

func (s scope) MemberByTag(tag string) (*args.Member, bool) {
	for _, m := range s.g.Members {
		if m.Tag() == tag || m.Username+"#"+m.Discriminator == tag {
			return m, true
		}
	}
	return nil, false
}

func (s scope) ChannelByID(id string) (*args.Channel, bool) {
	for _, c := range s.g.Channels {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

func (s scope) ChannelByName(name string) (*args.Channel, bool) {
	for _, c := range s.g.Channels {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s scope) RoleByID(id string) (*args.Role, bool) {
	for _, r := range s.g.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (s scope) RoleByName(name string) (*args.Role, bool) {
	for _, r := range s.g.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Package router turns platform events into command invocations and plugin
// listener runs.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
)

// Platform is what the router needs from the chat service it serves.
type Platform interface {
	// SelfID is the bot's own user id.
	SelfID() string
	// Scope returns the resolver for a guild, or false for messages that
	// don't belong to one (DMs).
	Scope(guildID string) (args.Resolver, bool)
	// Replier returns the reply sink for a channel.
	Replier(channelID string) cmd.Replier
	Permissions() cmd.PermissionChecker
}

// Router dispatches events. It holds no per-message state and may be called
// from many goroutines at once.
type Router struct {
	platform Platform
	plugins  *plugin.Set
	prefix   PrefixFunc
	log      zerolog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithPrefix sets how prefixes are looked up per guild.
func WithPrefix(fn PrefixFunc) Option {
	return func(r *Router) { r.prefix = fn }
}

// WithLogger replaces the router's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.log = l }
}

func New(p Platform, plugins *plugin.Set, opts ...Option) *Router {
	r := &Router{
		platform: p,
		plugins:  plugins,
		log:      log.With().Str("component", "router").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prefix returns the command prefix for guildID.
func (r *Router) Prefix(guildID string) string {
	if r.prefix != nil {
		if p := r.prefix(guildID); p != "" {
			return p
		}
	}
	return DefaultPrefix
}

// HandleEvent fans ev out to every listener registered for its kind. A
// message event is also checked for a command, which runs before
// HandleEvent returns. A ready event restarts background tasks.
//
// Errors are command failures that could not be reported back to the user.
func (r *Router) HandleEvent(ctx context.Context, ev event.Event) error {
	if ev == nil {
		return errors.New("nil event")
	}
	r.plugins.Emit(ev)

	switch e := ev.(type) {
	case event.ReadyEvent:
		r.plugins.Ready()
	case event.MessageEvent:
		return r.handleMessage(ctx, e)
	}
	return nil
}

func (r *Router) handleMessage(ctx context.Context, m event.MessageEvent) error {
	if m.MessageCreate == nil || m.Message == nil || m.Author == nil {
		return nil
	}
	if m.Author.ID == r.platform.SelfID() {
		return nil
	}
	scope, ok := r.platform.Scope(m.GuildID)
	if !ok {
		return nil
	}

	prefix := r.Prefix(m.GuildID)
	content := m.Content
	if !strings.HasPrefix(content, prefix) || content == prefix {
		return nil
	}
	name, rest, _ := strings.Cut(content[len(prefix):], " ")

	reply := r.platform.Replier(m.ChannelID)
	c, found := r.plugins.Commands().Get(name)
	if !found {
		return reply.Reply(ctx, fmt.Sprintf("%s**%s** isn't a command.", prefix, name))
	}

	inv := &cmd.Invocation{
		Prefix:    prefix,
		Actor:     cmd.Actor{ID: m.Author.ID, Name: m.Author.Username},
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Scope:     scope,
		Reply:     reply,
		Perms:     r.platform.Permissions(),
		Data:      m.MessageCreate,
	}

	err := c.Process(ctx, inv, rest)
	if err == nil {
		return nil
	}
	if msg, ok := cmd.UserMessage(err); ok {
		return reply.Reply(ctx, msg)
	}
	r.log.Error().Err(err).
		Str("command", c.Name).
		Str("guild", m.GuildID).
		Str("channel", m.ChannelID).
		Msg("command failed")
	return fmt.Errorf("command %s: %w", c.Name, err)
}

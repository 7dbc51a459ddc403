// Package cmd provides the text-command core: a command is a name, an ordered
// argument schema, the permissions it needs and a handler. Process checks
// permissions, parses the argument string against the schema and runs the
// handler. How messages reach a command (Discord, console) is up to the
// router that owns the registry.
package cmd

import (
	"context"

	"github.com/keshon/detache/pkg/args"
)

// Actor is whoever invoked a command.
type Actor struct {
	ID   string
	Name string
}

// Replier delivers a reply into the conversation a command came from.
type Replier interface {
	Reply(ctx context.Context, text string) error
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, text string) error

func (f ReplierFunc) Reply(ctx context.Context, text string) error { return f(ctx, text) }

// PermissionChecker reports whether an actor holds a permission in a channel.
type PermissionChecker interface {
	HasPermission(ctx context.Context, actorID, channelID string, p Permission) (bool, error)
}

// Invocation is everything a handler gets for one command message. It is
// built fresh for every message and dropped once the handler returns.
type Invocation struct {
	Prefix    string
	Actor     Actor
	GuildID   string
	ChannelID string

	Scope args.Resolver
	Reply Replier
	Perms PermissionChecker

	// Command and Args are filled in by Process before the handler runs.
	Command *Command
	Args    args.Values

	// Data is the raw platform payload, e.g. *discordgo.MessageCreate.
	Data any
}

// Send replies through the invocation's reply sink. It is a no-op without one.
func (inv *Invocation) Send(ctx context.Context, text string) error {
	if inv.Reply == nil || text == "" {
		return nil
	}
	return inv.Reply.Reply(ctx, text)
}

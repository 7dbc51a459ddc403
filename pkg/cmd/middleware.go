package cmd

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// Middleware wraps a handler (logging, recovery, metrics).
type Middleware func(Handler) Handler

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WithRecover turns a panicking handler into an error so one broken command
// cannot take the dispatch loop down.
func WithRecover() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) (reply string, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("command panicked: %v\n%s", r, debug.Stack())
				}
			}()
			return next(ctx, inv)
		}
	}
}

// WithLogger logs every handler run with its actor, duration and outcome.
func WithLogger(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) (string, error) {
			start := time.Now()
			reply, err := next(ctx, inv)

			name := ""
			if inv.Command != nil {
				name = inv.Command.Name
			}
			ev := logger.Info()
			if err != nil {
				ev = logger.Error().Err(err)
			}
			ev.Str("command", name).
				Str("actor", inv.Actor.ID).
				Str("guild", inv.GuildID).
				Str("channel", inv.ChannelID).
				Dur("took", time.Since(start)).
				Msg("command executed")
			return reply, err
		}
	}
}

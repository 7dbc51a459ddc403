// Package discord binds the router to a discordgo session: it translates
// gateway events, resolves arguments against the session state, checks
// channel permissions and sends replies through a rate limiter.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/retrylimit"
)

// Handler receives translated events. *router.Router implements it.
type Handler interface {
	HandleEvent(ctx context.Context, ev event.Event) error
}

// Bot is a Discord connection. It implements router.Platform, and the
// moderation and presence hooks the built-in plugins use.
type Bot struct {
	session *discordgo.Session
	limiter *retrylimit.Limiter
	policy  retrylimit.Policy
	log     zerolog.Logger

	ctx     context.Context
	handler Handler

	// started is set before the session opens. A GuildCreate for a guild
	// joined earlier is the guild coming online, not a join.
	started time.Time

	// guilds currently in an outage
	mu      sync.Mutex
	pending map[string]struct{}
}

// Option configures a Bot.
type Option func(*Bot)

// WithReplyRate sets the outbound message rate: initial messages per second,
// and the attempts each message gets.
func WithReplyRate(perSecond float64, attempts int) Option {
	return func(b *Bot) {
		if perSecond > 0 {
			b.limiter = retrylimit.NewLimiter(perSecond, perSecond/8, perSecond*2)
		}
		if attempts > 0 {
			b.policy.MaxAttempts = attempts
		}
	}
}

// New creates a bot for token without connecting.
func New(token string, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsAll
	s.StateEnabled = true
	// keep recent messages so deletions can carry what was deleted
	s.State.MaxMessageCount = 100

	policy := retrylimit.DefaultPolicy()
	policy.Classify = classifyREST

	b := &Bot{
		session: s,
		limiter: retrylimit.NewLimiter(5, 0.5, 10),
		policy:  policy,
		log:     log.With().Str("component", "discord").Logger(),
		ctx:     context.Background(),
		started: time.Now(),
		pending: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Session exposes the underlying session.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Run connects, feeds every event to h and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context, h Handler) error {
	b.ctx = ctx
	b.handler = h
	b.started = time.Now()
	b.registerHandlers()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.session.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	return nil
}

// dispatch runs on discordgo's per-event goroutine.
func (b *Bot) dispatch(ev event.Event) {
	if b.handler == nil {
		return
	}
	if err := b.handler.HandleEvent(b.ctx, ev); err != nil {
		b.log.Error().Err(err).Stringer("event", ev.Kind()).Msg("event handling failed")
	}
}

// SelfID returns the bot's user id, or "" before the first Ready.
func (b *Bot) SelfID() string {
	st := b.session.State
	if st == nil || st.User == nil {
		return ""
	}
	return st.User.ID
}

// Scope resolves arguments against the cached guild. Direct messages have no
// scope.
func (b *Bot) Scope(guildID string) (args.Resolver, bool) {
	if guildID == "" || b.session.State == nil {
		return nil, false
	}
	scope, ok := newGuildScope(b.session.State, guildID)
	if !ok {
		return nil, false
	}
	return scope, true
}

// Replier sends to channelID through the bot's rate limiter.
func (b *Bot) Replier(channelID string) cmd.Replier {
	return cmd.ReplierFunc(func(ctx context.Context, text string) error {
		for _, chunk := range splitMessage(text, maxMessageLength) {
			err := b.call(ctx, func(ctx context.Context) error {
				_, err := b.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx))
				return err
			})
			if err != nil {
				return fmt.Errorf("send to channel %s: %w", channelID, err)
			}
		}
		return nil
	})
}

// Permissions checks against cached state, falling back to the REST API.
func (b *Bot) Permissions() cmd.PermissionChecker {
	return &permissionChecker{state: b.session.State, session: b.session}
}

// Ban bans userID from guildID without deleting their messages.
func (b *Bot) Ban(ctx context.Context, guildID, userID, reason string) error {
	return b.call(ctx, func(ctx context.Context) error {
		return b.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
	})
}

// Kick removes userID from guildID.
func (b *Bot) Kick(ctx context.Context, guildID, userID, reason string) error {
	return b.call(ctx, func(ctx context.Context) error {
		return b.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
	})
}

// SetStatus sets the bot's "Playing" status.
func (b *Bot) SetStatus(_ context.Context, text string) error {
	return b.session.UpdateGameStatus(0, text)
}

func (b *Bot) call(ctx context.Context, fn func(ctx context.Context) error) error {
	return retrylimit.Do(ctx, b.limiter, b.policy, fn)
}

// Package activity keeps the bot's presence fresh and tracks what happens
// in the guilds it sees.
package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
)

// Presence sets the bot's status line.
type Presence interface {
	SetStatus(ctx context.Context, text string) error
}

type Options struct {
	// Statuses are shown in turn, one per Interval.
	Statuses []string
	Interval time.Duration
	// EditQuiet is how long edits must stop before a burst is logged.
	EditQuiet time.Duration
}

// Counters are the totals since the plugin was built.
type Counters struct {
	Messages int64
	Edits    int64
	Joins    int64
	Bursts   int64
}

const rotationTask = "status-rotation"

type tracker struct {
	presence Presence
	opts     Options
	self     *plugin.Plugin

	messages atomic.Int64
	edits    atomic.Int64
	joins    atomic.Int64
	bursts   atomic.Int64
	pending  atomic.Int64

	mu     sync.Mutex
	status string
}

// Tracker exposes the counters to other plugins and tests.
type Tracker interface {
	Counters() Counters
	Status() string
}

// New builds the activity plugin.
func New(presence Presence, opts Options) (*plugin.Plugin, Tracker, error) {
	if presence == nil {
		return nil, nil, errors.New("activity: presence is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.EditQuiet <= 0 {
		opts.EditQuiet = 2 * time.Second
	}
	t := &tracker{presence: presence, opts: opts}

	b := plugin.New("activity").
		Command(&cmd.Command{
			Name:        "activity",
			Description: "Shows what the bot has seen since it started.",
			Handler:     t.report,
		}).
		Command(&cmd.Command{
			Name:        "rotation",
			Description: "Turns the status rotation on or off until the next reconnect.",
			Args: []args.Spec{
				args.Arg("state", args.Any).Optional(nil).WithHelp("on or off, omit to see the current state"),
			},
			Permissions: []cmd.Permission{cmd.PermissionManageGuild},
			Handler:     t.toggleRotation,
		}).
		Task(rotationTask, t.rotate)

	plugin.On(b, "count-messages", func(context.Context, event.MessageEvent) error {
		t.messages.Add(1)
		return nil
	})

	log := b.Logger()
	plugin.On(b, "edit-bursts", func(ctx context.Context, ev event.MessageEditEvent) error {
		t.edits.Add(1)
		t.pending.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.opts.EditQuiet):
		}
		n := t.pending.Swap(0)
		t.bursts.Add(1)
		channel := ""
		if ev.MessageUpdate != nil && ev.Message != nil {
			channel = ev.ChannelID
		}
		log.Debug().Int64("edits", n).Str("channel", channel).Msg("edit burst settled")
		return nil
	}, plugin.SingleInstance())

	plugin.On(b, "count-joins", func(_ context.Context, ev event.MemberJoinEvent) error {
		t.joins.Add(1)
		if ev.GuildMemberAdd != nil && ev.Member != nil && ev.User != nil {
			log.Info().Str("guild", ev.GuildID).Str("user", ev.User.Username).Msg("member joined")
		}
		return nil
	})

	p, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	t.self = p
	return p, t, nil
}

// rotate runs until cancelled, which happens on every reconnect.
func (t *tracker) rotate(ctx context.Context, p *plugin.Plugin) error {
	if len(t.opts.Statuses) == 0 {
		return nil
	}
	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		text := t.opts.Statuses[i%len(t.opts.Statuses)]
		if err := t.presence.SetStatus(ctx, text); err != nil {
			p.Logger().Warn().Err(err).Str("status", text).Msg("failed to update status")
		} else {
			t.mu.Lock()
			t.status = text
			t.mu.Unlock()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *tracker) toggleRotation(_ context.Context, inv *cmd.Invocation) (string, error) {
	switch strings.ToLower(inv.Args.String("state")) {
	case "":
		if t.self.TaskRunning(rotationTask) {
			return "Status rotation is **on**.", nil
		}
		return "Status rotation is **off**.", nil
	case "on":
		if len(t.opts.Statuses) == 0 {
			return "No statuses are configured.", nil
		}
		if _, err := t.self.StartTask(rotationTask); err != nil {
			return "Status rotation is already on.", nil
		}
		return "Status rotation started.", nil
	case "off":
		if err := t.self.StopTask(rotationTask); err != nil {
			return "Status rotation is already off.", nil
		}
		return "Status rotation stopped.", nil
	default:
		return fmt.Sprintf("Use `%srotation on` or `%srotation off`.", inv.Prefix, inv.Prefix), nil
	}
}

func (t *tracker) report(context.Context, *cmd.Invocation) (string, error) {
	c := t.Counters()
	out := fmt.Sprintf("Since start: %d messages, %d edits in %d bursts, %d joins.",
		c.Messages, c.Edits, c.Bursts, c.Joins)
	if s := t.Status(); s != "" {
		out += fmt.Sprintf("\nStatus: *%s*", s)
	}
	return out, nil
}

func (t *tracker) Counters() Counters {
	return Counters{
		Messages: t.messages.Load(),
		Edits:    t.edits.Load(),
		Joins:    t.joins.Load(),
		Bursts:   t.bursts.Load(),
	}
}

func (t *tracker) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

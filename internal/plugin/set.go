package plugin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
)

// Set is the process-wide collection of plugins: it owns the merged command
// registry and the job pool listeners and tasks run in. Plugins are added
// during startup; afterwards the set is only read.
type Set struct {
	plugins  []*Plugin
	names    map[string]struct{}
	commands *cmd.Registry
	jobs     *jobmgr.Manager
	mws      []cmd.Middleware
	log      zerolog.Logger
}

// NewSet creates an empty set running its jobs in jobs. mws wrap every
// command that gets merged in.
func NewSet(jobs *jobmgr.Manager, mws ...cmd.Middleware) *Set {
	return &Set{
		names:    make(map[string]struct{}),
		commands: cmd.NewRegistry(),
		jobs:     jobs,
		mws:      mws,
		log:      log.With().Str("component", "plugins").Logger(),
	}
}

// Add merges p into the set. It fails, adding nothing, if the plugin name or
// any of its command names is already taken.
func (s *Set) Add(p *Plugin) error {
	if _, dup := s.names[p.name]; dup {
		return fmt.Errorf("plugin %q already registered", p.name)
	}

	wrapped := cmd.NewRegistry()
	for _, c := range p.commands.All() {
		if err := wrapped.Register(c, s.mws...); err != nil {
			return fmt.Errorf("plugin %q: %w", p.name, err)
		}
	}
	if err := s.commands.Merge(wrapped); err != nil {
		return fmt.Errorf("plugin %q: %w", p.name, err)
	}

	p.jobs = s.jobs
	s.names[p.name] = struct{}{}
	s.plugins = append(s.plugins, p)

	s.log.Debug().
		Str("plugin", p.name).
		Int("commands", p.commands.Len()).
		Int("tasks", len(p.tasks)).
		Msg("plugin registered")
	return nil
}

// Plugins returns the plugins in registration order.
func (s *Set) Plugins() []*Plugin { return s.plugins }

// Commands returns the merged registry.
func (s *Set) Commands() *cmd.Registry { return s.commands }

// Jobs returns the pool listeners and tasks run in.
func (s *Set) Jobs() *jobmgr.Manager { return s.jobs }

// Emit starts every listener of every plugin registered for ev's kind. Each
// runs as its own job; Emit does not wait for any of them.
func (s *Set) Emit(ev event.Event) []*jobmgr.Handle {
	var handles []*jobmgr.Handle
	for _, p := range s.plugins {
		for _, l := range p.listeners[ev.Kind()] {
			handles = append(handles, s.start(p, l, ev))
		}
	}
	return handles
}

func (s *Set) start(p *Plugin, l *Listener, ev event.Event) *jobmgr.Handle {
	name := p.name + "/" + l.Name
	run := func(ctx context.Context) error { return l.Handle(ctx, ev) }

	p.log.Trace().Str("listener", l.Name).Stringer("event", ev.Kind()).Msg("listener triggered")
	if l.SingleInstance {
		return s.jobs.Restart(name, run)
	}
	return s.jobs.Go(name, run)
}

// Ready restarts every background task of every plugin. A run still live
// from a previous ready signal is cancelled first.
func (s *Set) Ready() []*jobmgr.Handle {
	var handles []*jobmgr.Handle
	for _, p := range s.plugins {
		for _, t := range p.tasks {
			p, t := p, t
			h := s.jobs.Restart(TaskJobName(p.name, t.ID), func(ctx context.Context) error {
				return t.Run(ctx, p)
			})
			handles = append(handles, h)
			p.log.Debug().Str("task", t.ID).Str("run", h.ID).Msg("background task started")
		}
	}
	return handles
}

// Shutdown cancels every listener and task and waits for them.
func (s *Set) Shutdown() {
	s.jobs.Close()
}

// TaskJobName is the job name a background task runs under.
func TaskJobName(plugin, id string) string {
	return plugin + "/task/" + id
}

// LogReporter logs job lifecycle events: failures as errors, the rest at
// debug level.
func LogReporter(logger zerolog.Logger) jobmgr.StatusReporter {
	return func(r jobmgr.Report) {
		ev := logger.Debug()
		if r.State == jobmgr.StateFailed {
			ev = logger.Error().Err(r.Err)
		}
		ev.Str("job", r.Name).Str("run", r.ID).Str("state", r.State.String()).Msg("job status")
	}
}

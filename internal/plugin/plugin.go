// Package plugin groups commands, event listeners and background tasks into
// plugins, and runs them: listeners on every matching event, tasks whenever
// the connection becomes ready.
package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
)

// ListenerFunc handles one event.
type ListenerFunc func(ctx context.Context, ev event.Event) error

// TaskFunc is a long-running background task bound to its plugin. It should
// return when ctx is cancelled.
type TaskFunc func(ctx context.Context, p *Plugin) error

// Listener reacts to one kind of event.
type Listener struct {
	Name string
	Kind event.Kind
	// SingleInstance listeners cancel their previous run before starting a
	// new one.
	SingleInstance bool
	Handle         ListenerFunc
}

// Task is a background task, restarted on every ready signal.
type Task struct {
	ID  string
	Run TaskFunc
}

// Plugin is an immutable bundle of commands, listeners and tasks. Build one
// with New.
type Plugin struct {
	name      string
	commands  *cmd.Registry
	listeners map[event.Kind][]*Listener
	tasks     []*Task
	log       zerolog.Logger
	jobs      *jobmgr.Manager
}

func (p *Plugin) String() string { return fmt.Sprintf("Plugin(%q)", p.name) }

func (p *Plugin) Name() string { return p.name }

// Commands returns the plugin's own commands.
func (p *Plugin) Commands() *cmd.Registry { return p.commands }

// Listeners returns the listeners for kind in registration order.
func (p *Plugin) Listeners(kind event.Kind) []*Listener { return p.listeners[kind] }

// Tasks returns the background tasks in registration order.
func (p *Plugin) Tasks() []*Task { return p.tasks }

// Logger returns the plugin's logger.
func (p *Plugin) Logger() *zerolog.Logger { return &p.log }

// Go runs fn as a job of the set the plugin belongs to, without blocking.
func (p *Plugin) Go(name string, fn jobmgr.Runner) (*jobmgr.Handle, error) {
	if p.jobs == nil {
		return nil, fmt.Errorf("plugin %q is not attached to a set", p.name)
	}
	return p.jobs.Go(p.name+"/"+name, fn), nil
}

// StartTask starts the task with this id outside a ready signal. It fails if
// the task is unknown or already running.
func (p *Plugin) StartTask(id string) (*jobmgr.Handle, error) {
	if p.jobs == nil {
		return nil, fmt.Errorf("plugin %q is not attached to a set", p.name)
	}
	for _, t := range p.tasks {
		if t.ID == id {
			return p.jobs.StartAsync(TaskJobName(p.name, id), func(ctx context.Context) error {
				return t.Run(ctx, p)
			})
		}
	}
	return nil, fmt.Errorf("plugin %q has no background task %q", p.name, id)
}

// StopTask cancels a running task. The next ready signal starts it again.
func (p *Plugin) StopTask(id string) error {
	if p.jobs == nil {
		return fmt.Errorf("plugin %q is not attached to a set", p.name)
	}
	return p.jobs.Stop(TaskJobName(p.name, id))
}

// TaskRunning reports whether the task with this id is live.
func (p *Plugin) TaskRunning(id string) bool {
	return p.jobs != nil && p.jobs.Running(TaskJobName(p.name, id))
}

// ListenOption configures a listener.
type ListenOption func(*Listener)

// SingleInstance keeps at most one run of the listener alive.
func SingleInstance() ListenOption {
	return func(l *Listener) { l.SingleInstance = true }
}

// Builder assembles a Plugin and checks names as it goes. Errors are
// collected and returned by Build.
type Builder struct {
	p         *Plugin
	mws       []cmd.Middleware
	listeners map[string]struct{}
	tasks     map[string]struct{}
	errs      []error
}

// New starts a plugin called name.
func New(name string) *Builder {
	b := &Builder{
		p: &Plugin{
			name:      name,
			commands:  cmd.NewRegistry(),
			listeners: make(map[event.Kind][]*Listener),
			log:       log.With().Str("plugin", name).Logger(),
		},
		listeners: make(map[string]struct{}),
		tasks:     make(map[string]struct{}),
	}
	if name == "" {
		b.errs = append(b.errs, errors.New("plugin name is required"))
	}
	return b
}

// Logger returns the logger of the plugin being built, for listeners and
// tasks to close over.
func (b *Builder) Logger() *zerolog.Logger { return &b.p.log }

// Use wraps every command registered after it with mws.
func (b *Builder) Use(mws ...cmd.Middleware) *Builder {
	b.mws = append(b.mws, mws...)
	return b
}

// Command adds a command.
func (b *Builder) Command(c *cmd.Command) *Builder {
	if err := b.p.commands.Register(c, b.mws...); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Listen adds a listener for kind. Listener names must be unique within the
// plugin.
func (b *Builder) Listen(kind event.Kind, name string, fn ListenerFunc, opts ...ListenOption) *Builder {
	switch {
	case !kind.Valid():
		b.errs = append(b.errs, fmt.Errorf("listener %q: unknown event kind %d", name, int(kind)))
		return b
	case name == "":
		b.errs = append(b.errs, fmt.Errorf("listener for %s has no name", kind))
		return b
	case fn == nil:
		b.errs = append(b.errs, fmt.Errorf("listener %q has no handler", name))
		return b
	}
	if _, dup := b.listeners[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate listener %q", name))
		return b
	}
	b.listeners[name] = struct{}{}

	l := &Listener{Name: name, Kind: kind, Handle: fn}
	for _, opt := range opts {
		opt(l)
	}
	b.p.listeners[kind] = append(b.p.listeners[kind], l)
	return b
}

// On adds a listener typed by its payload, e.g.
//
//	plugin.On(b, "log-edits", func(ctx context.Context, ev event.MessageEditEvent) error { ... })
func On[E event.Event](b *Builder, name string, fn func(context.Context, E) error, opts ...ListenOption) *Builder {
	var zero E
	return b.Listen(zero.Kind(), name, func(ctx context.Context, ev event.Event) error {
		typed, ok := ev.(E)
		if !ok {
			return fmt.Errorf("listener %q: unexpected payload %T", name, ev)
		}
		return fn(ctx, typed)
	}, opts...)
}

// Task adds a background task. Task ids must be unique within the plugin.
func (b *Builder) Task(id string, fn TaskFunc) *Builder {
	switch {
	case id == "":
		b.errs = append(b.errs, errors.New("background task has no id"))
		return b
	case fn == nil:
		b.errs = append(b.errs, fmt.Errorf("background task %q has no handler", id))
		return b
	}
	if _, dup := b.tasks[id]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate background task %q", id))
		return b
	}
	b.tasks[id] = struct{}{}
	b.p.tasks = append(b.p.tasks, &Task{ID: id, Run: fn})
	return b
}

// Build returns the plugin, or every registration error joined together.
func (b *Builder) Build() (*Plugin, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("plugin %q: %w", b.p.name, errors.Join(b.errs...))
	}
	return b.p, nil
}

// MustBuild is Build for plugins assembled from constants.
func (b *Builder) MustBuild() *Plugin {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

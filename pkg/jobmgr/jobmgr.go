// Package jobmgr runs units of work in their own goroutines and keeps a
// handle to each one, so they can be cancelled, restarted and observed.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, func(r jobmgr.Report) {
//	    log.Info().Str("job", r.Name).Str("state", r.State.String()).Msg("job")
//	})
//
//	// anonymous, fire and forget
//	jm.Go("on_message", func(ctx context.Context) error { ... })
//
//	// named: at most one live run per name
//	jm.Restart("status-rotation", func(ctx context.Context) error {
//	    // work until ctx is cancelled
//	    return nil
//	})
//
// Cancellation is a request. Restart cancels the live run and starts the new
// one straight away without waiting, so a runner must treat ctx.Done() as
// advisory and tolerate a short overlap with its predecessor.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Runner is a unit of work. It should return once ctx is cancelled.
type Runner func(ctx context.Context) error

// ErrPanic wraps a value recovered from a panicking runner.
var ErrPanic = errors.New("job panicked")

// State is a lifecycle step reported for a job.
type State int

const (
	StateRunning State = iota
	StateDone
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Report is one lifecycle event of a job.
type Report struct {
	Name  string
	ID    string
	State State
	Err   error
}

// StatusReporter receives lifecycle events. It is called from job goroutines.
type StatusReporter func(Report)

// Handle refers to one execution of a job.
type Handle struct {
	Name string
	ID   string

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Cancel requests cancellation. It does not wait.
func (h *Handle) Cancel() { h.cancel() }

// Done is closed once the runner has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err is the runner's result. It is only meaningful after Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Stats counts what the manager has done since it was created.
type Stats struct {
	Started   int64
	Cancelled int64
	Failed    int64
}

// Manager starts, stops and tracks jobs. It is safe for concurrent use.
type Manager struct {
	ctx      context.Context
	cancel   context.CancelFunc
	reporter StatusReporter

	mu    sync.Mutex
	named map[string]*Handle
	wg    sync.WaitGroup

	started   atomic.Int64
	cancelled atomic.Int64
	failed    atomic.Int64
}

// NewManager creates a Manager whose jobs are all children of ctx. The
// reporter may be nil.
func NewManager(ctx context.Context, reporter StatusReporter) *Manager {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		ctx:      ctx,
		cancel:   cancel,
		reporter: reporter,
		named:    make(map[string]*Handle),
	}
}

// Go runs an anonymous job. Any number of jobs may share name; it only
// labels reports.
func (m *Manager) Go(name string, run Runner) *Handle {
	h := m.newHandle(name)
	m.launch(h, run, false)
	return h
}

// StartAsync runs a named job. If a job with the same name is already
// running, an error is returned and nothing is started.
func (m *Manager) StartAsync(name string, run Runner) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.named[name]; exists {
		return nil, fmt.Errorf("job '%s' is already running", name)
	}
	h := m.newHandle(name)
	m.named[name] = h
	m.launch(h, run, true)
	return h, nil
}

// Restart requests cancellation of the live job with this name, if any, and
// starts run in its place immediately.
func (m *Manager) Restart(name string, run Runner) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, exists := m.named[name]; exists {
		m.cancelled.Add(1)
		old.Cancel()
	}
	h := m.newHandle(name)
	m.named[name] = h
	m.launch(h, run, true)
	return h
}

// Stop cancels a running named job.
// If the job is not running, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.named[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}
	m.cancelled.Add(1)
	h.Cancel()
	delete(m.named, name)
	return nil
}

// StopAll cancels every named job. Anonymous jobs stop when the manager's
// context is cancelled.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, h := range m.named {
		m.cancelled.Add(1)
		h.Cancel()
		delete(m.named, name)
	}
}

// Close cancels every job, named or not, and waits for all of them.
func (m *Manager) Close() {
	m.StopAll()
	m.cancel()
	m.Wait()
}

// Wait blocks until every job started so far has returned.
func (m *Manager) Wait() { m.wg.Wait() }

// Running reports whether a named job is live.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.named[name]
	return ok
}

// List returns the names of live named jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.named))
	for k := range m.named {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of live named jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// Stats returns the manager's counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Started:   m.started.Load(),
		Cancelled: m.cancelled.Load(),
		Failed:    m.failed.Load(),
	}
}

func (m *Manager) newHandle(name string) *Handle {
	return &Handle{Name: name, ID: uuid.NewString(), done: make(chan struct{})}
}

// launch starts h. Named jobs must be launched with m.mu held.
func (m *Manager) launch(h *Handle, run Runner, named bool) {
	ctx, cancel := context.WithCancel(m.ctx)
	h.cancel = cancel

	m.started.Add(1)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(h.done)
		defer cancel()

		m.report(Report{Name: h.Name, ID: h.ID, State: StateRunning})
		h.err = safeRun(ctx, run)

		switch {
		case h.err == nil:
			m.report(Report{Name: h.Name, ID: h.ID, State: StateDone})
		case ctx.Err() != nil && errors.Is(h.err, context.Canceled):
			m.report(Report{Name: h.Name, ID: h.ID, State: StateCancelled, Err: h.err})
		default:
			m.failed.Add(1)
			m.report(Report{Name: h.Name, ID: h.ID, State: StateFailed, Err: h.err})
		}

		if named {
			m.mu.Lock()
			// a Restart may already have replaced us
			if cur, ok := m.named[h.Name]; ok && cur == h {
				delete(m.named, h.Name)
			}
			m.mu.Unlock()
		}
	}()
}

func safeRun(ctx context.Context, run Runner) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
		}
	}()
	return run(ctx)
}

// report delivers lifecycle events to the reporter if present.
func (m *Manager) report(r Report) {
	if m.reporter != nil {
		m.reporter(r)
	}
}

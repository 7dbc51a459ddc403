package plugin

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noop(context.Context, *cmd.Invocation) (string, error) { return "", nil }

func newSet(t *testing.T) *Set {
	t.Helper()
	s := NewSet(jobmgr.NewManager(context.Background(), nil))
	t.Cleanup(s.Shutdown)
	return s
}

func messageEvent(content string) event.MessageEvent {
	return event.MessageEvent{MessageCreate: &discordgo.MessageCreate{
		Message: &discordgo.Message{Content: content},
	}}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	fn := func(context.Context, event.Event) error { return nil }
	task := func(context.Context, *Plugin) error { return nil }

	_, err := New("dups").
		Command(&cmd.Command{Name: "ping", Handler: noop}).
		Command(&cmd.Command{Name: "ping", Handler: noop}).
		Listen(event.Message, "log", fn).
		Listen(event.MessageEdit, "log", fn).
		Task("tick", task).
		Task("tick", task).
		Build()

	require.Error(t, err)
	assert.ErrorIs(t, err, cmd.ErrDuplicateCommand)
	assert.Contains(t, err.Error(), `duplicate listener "log"`)
	assert.Contains(t, err.Error(), `duplicate background task "tick"`)
}

func TestBuildRejectsInvalidListener(t *testing.T) {
	_, err := New("bad").Listen(event.Kind(0), "x", func(context.Context, event.Event) error { return nil }).Build()
	assert.Error(t, err)

	_, err = New("").Build()
	assert.Error(t, err)
}

func TestSetRejectsCommandCollisionAcrossPlugins(t *testing.T) {
	s := newSet(t)

	a := New("a").Command(&cmd.Command{Name: "ping", Handler: noop}).MustBuild()
	b := New("b").
		Command(&cmd.Command{Name: "pong", Handler: noop}).
		Command(&cmd.Command{Name: "ping", Handler: noop}).
		MustBuild()

	require.NoError(t, s.Add(a))
	err := s.Add(b)
	assert.ErrorIs(t, err, cmd.ErrDuplicateCommand)

	_, ok := s.Commands().Get("pong")
	assert.False(t, ok, "a rejected plugin must not leak commands")
	assert.Len(t, s.Plugins(), 1)

	assert.Error(t, s.Add(New("a").MustBuild()))
}

func TestEmitRunsMatchingListeners(t *testing.T) {
	s := newSet(t)

	var messages, edits atomic.Int32
	p := New("watch").
		Listen(event.Message, "count", func(context.Context, event.Event) error {
			messages.Add(1)
			return nil
		}).
		Listen(event.MessageEdit, "edits", func(context.Context, event.Event) error {
			edits.Add(1)
			return nil
		}).
		MustBuild()
	require.NoError(t, s.Add(p))

	handles := s.Emit(messageEvent("hi"))
	require.Len(t, handles, 1)
	<-handles[0].Done()

	assert.Equal(t, int32(1), messages.Load())
	assert.Equal(t, int32(0), edits.Load())
}

func TestEmitFailureDoesNotAffectOtherListeners(t *testing.T) {
	s := newSet(t)

	var ran atomic.Bool
	require.NoError(t, s.Add(New("broken").
		Listen(event.Message, "panics", func(context.Context, event.Event) error { panic("bad listener") }).
		MustBuild()))
	require.NoError(t, s.Add(New("fine").
		Listen(event.Message, "works", func(context.Context, event.Event) error {
			ran.Store(true)
			return nil
		}).
		MustBuild()))

	for _, h := range s.Emit(messageEvent("hi")) {
		<-h.Done()
	}
	assert.True(t, ran.Load())
	assert.Equal(t, int64(1), s.Jobs().Stats().Failed)
}

func TestOnDeliversTypedPayload(t *testing.T) {
	s := newSet(t)

	got := make(chan string, 1)
	b := New("typed")
	On(b, "content", func(_ context.Context, ev event.MessageEvent) error {
		got <- ev.Content
		return nil
	})
	require.NoError(t, s.Add(b.MustBuild()))

	s.Emit(messageEvent("hello"))
	select {
	case c := <-got:
		assert.Equal(t, "hello", c)
	case <-time.After(time.Second):
		t.Fatal("listener did not run")
	}
}

func TestSingleInstanceListenerCancelsPreviousRun(t *testing.T) {
	s := newSet(t)

	var cancelled atomic.Int32
	started := make(chan struct{}, 2)
	b := New("single")
	b.Listen(event.Message, "slow", func(ctx context.Context, _ event.Event) error {
		started <- struct{}{}
		<-ctx.Done()
		cancelled.Add(1)
		return ctx.Err()
	}, SingleInstance())
	require.NoError(t, s.Add(b.MustBuild()))

	first := s.Emit(messageEvent("one"))
	<-started
	second := s.Emit(messageEvent("two"))
	<-started

	<-first[0].Done()
	assert.Equal(t, int64(1), s.Jobs().Stats().Cancelled)
	assert.Equal(t, int32(1), cancelled.Load())
	assert.Equal(t, []string{"single/slow"}, s.Jobs().List())

	select {
	case <-second[0].Done():
		t.Fatal("second run should still be live")
	default:
	}
}

func TestReadyRestartsBackgroundTasks(t *testing.T) {
	s := newSet(t)

	var runs atomic.Int32
	var self atomic.Pointer[Plugin]
	p := New("bg").
		Task("tick", func(ctx context.Context, p *Plugin) error {
			runs.Add(1)
			self.Store(p)
			<-ctx.Done()
			return ctx.Err()
		}).
		MustBuild()
	require.NoError(t, s.Add(p))

	first := s.Ready()
	require.Len(t, first, 1)
	second := s.Ready()

	<-first[0].Done()
	assert.ErrorIs(t, first[0].Err(), context.Canceled)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
	assert.Same(t, p, self.Load())
	assert.True(t, s.Jobs().Running(TaskJobName("bg", "tick")))

	s.Shutdown()
	<-second[0].Done()
}

func TestStartAndStopTask(t *testing.T) {
	s := newSet(t)
	p := New("bg").
		Task("tick", func(ctx context.Context, _ *Plugin) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		MustBuild()

	_, err := p.StartTask("tick")
	assert.Error(t, err, "not attached yet")
	require.NoError(t, s.Add(p))

	h, err := p.StartTask("tick")
	require.NoError(t, err)
	assert.True(t, p.TaskRunning("tick"))
	_, err = p.StartTask("tick")
	assert.Error(t, err, "already running")
	_, err = p.StartTask("missing")
	assert.Error(t, err)

	require.NoError(t, p.StopTask("tick"))
	<-h.Done()
	assert.ErrorIs(t, h.Err(), context.Canceled)
	assert.False(t, p.TaskRunning("tick"))
	assert.Error(t, p.StopTask("tick"))
	assert.Equal(t, int64(1), s.Jobs().Stats().Cancelled)

	// a ready signal brings it back
	s.Ready()
	assert.True(t, p.TaskRunning("tick"))
}

func TestPluginGoRequiresSet(t *testing.T) {
	p := New("loose").MustBuild()
	_, err := p.Go("x", func(context.Context) error { return nil })
	assert.Error(t, err)

	s := newSet(t)
	require.NoError(t, s.Add(p))
	h, err := p.Go("x", func(context.Context) error { return errors.New("nope") })
	require.NoError(t, err)
	<-h.Done()
	assert.Equal(t, "loose/x", h.Name)
}

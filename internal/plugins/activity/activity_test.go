package activity

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/internal/memscope"
	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setup(t *testing.T, opts Options) (*plugin.Set, Tracker, *memscope.Platform) {
	t.Helper()
	p := memscope.New("bot")
	pl, tr, err := New(p, opts)
	require.NoError(t, err)

	set := plugin.NewSet(jobmgr.NewManager(context.Background(), nil))
	t.Cleanup(set.Shutdown)
	require.NoError(t, set.Add(pl))
	return set, tr, p
}

func edit(channelID string) event.MessageEditEvent {
	return event.MessageEditEvent{MessageUpdate: &discordgo.MessageUpdate{
		Message: &discordgo.Message{ChannelID: channelID},
	}}
}

func TestStatusRotation(t *testing.T) {
	set, tr, p := setup(t, Options{Statuses: []string{"one", "two"}, Interval: 10 * time.Millisecond})

	set.Ready()
	require.Eventually(t, func() bool { return p.Status() == "two" }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return p.Status() == "one" }, time.Second, time.Millisecond)
	assert.NotEmpty(t, tr.Status())
	assert.True(t, set.Jobs().Running(plugin.TaskJobName("activity", "status-rotation")))
}

func TestNoStatusesMeansNoRotation(t *testing.T) {
	set, _, p := setup(t, Options{})

	for _, h := range set.Ready() {
		<-h.Done()
		assert.NoError(t, h.Err())
	}
	assert.Empty(t, p.Status())
}

func TestEditBurstsCollapse(t *testing.T) {
	set, tr, _ := setup(t, Options{EditQuiet: 50 * time.Millisecond})

	var last []*jobmgr.Handle
	for i := 0; i < 3; i++ {
		last = set.Emit(edit("c1"))
	}
	require.Len(t, last, 1)
	<-last[0].Done()

	c := tr.Counters()
	assert.Equal(t, int64(3), c.Edits)
	assert.Equal(t, int64(1), c.Bursts)
	assert.Equal(t, int64(2), set.Jobs().Stats().Cancelled)
}

func TestCountersAndReport(t *testing.T) {
	set, tr, _ := setup(t, Options{})

	msg := event.MessageEvent{MessageCreate: &discordgo.MessageCreate{Message: &discordgo.Message{Content: "hi"}}}
	join := event.MemberJoinEvent{GuildMemberAdd: &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "5", Username: "eve"},
	}}}
	for _, ev := range []event.Event{msg, msg, join} {
		for _, h := range set.Emit(ev) {
			<-h.Done()
		}
	}

	c := tr.Counters()
	assert.Equal(t, int64(2), c.Messages)
	assert.Equal(t, int64(1), c.Joins)

	command, ok := set.Commands().Get("activity")
	require.True(t, ok)
	out, err := command.Handler(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Since start: 2 messages, 0 edits in 0 bursts, 1 joins.", out)
}

func TestRotationToggle(t *testing.T) {
	set, _, _ := setup(t, Options{Statuses: []string{"one"}, Interval: time.Hour})
	command, ok := set.Commands().Get("rotation")
	require.True(t, ok)
	assert.Equal(t, []cmd.Permission{cmd.PermissionManageGuild}, command.Permissions)

	toggle := func(state string) string {
		inv := &cmd.Invocation{Prefix: "!", Args: args.Values{}}
		if state != "" {
			inv.Args["state"] = state
		}
		out, err := command.Handler(context.Background(), inv)
		require.NoError(t, err)
		return out
	}
	job := plugin.TaskJobName("activity", "status-rotation")

	assert.Equal(t, "Status rotation is **off**.", toggle(""))
	set.Ready()
	assert.Equal(t, "Status rotation is **on**.", toggle(""))
	assert.Equal(t, "Status rotation is already on.", toggle("on"))

	assert.Equal(t, "Status rotation stopped.", toggle("OFF"))
	require.Eventually(t, func() bool { return !set.Jobs().Running(job) }, time.Second, time.Millisecond)
	assert.Equal(t, "Status rotation is already off.", toggle("off"))

	assert.Equal(t, "Status rotation started.", toggle("on"))
	assert.True(t, set.Jobs().Running(job))
	assert.Equal(t, "Use `!rotation on` or `!rotation off`.", toggle("maybe"))
}

func TestRotationNeedsStatuses(t *testing.T) {
	set, _, _ := setup(t, Options{})
	command, ok := set.Commands().Get("rotation")
	require.True(t, ok)

	out, err := command.Handler(context.Background(), &cmd.Invocation{Args: args.Values{"state": "on"}})
	require.NoError(t, err)
	assert.Equal(t, "No statuses are configured.", out)
}

func TestRequiresPresence(t *testing.T) {
	_, _, err := New(nil, Options{})
	assert.Error(t, err)
}

package router

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
	"github.com/keshon/detache/internal/memscope"
	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	platform *memscope.Platform
	set      *plugin.Set
	router   *Router
	seen     atomic.Int32
	ready    atomic.Int32
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{platform: memscope.New("bot")}
	f.platform.AddGuild(&memscope.Guild{
		ID:       "g1",
		Name:     "Test Server",
		Members:  []*args.Member{{ID: "1", Username: "alice", Discriminator: "1234"}},
		Channels: []*args.Channel{{ID: "c1", Name: "general"}},
	})

	b := plugin.New("test").
		Command(&cmd.Command{
			Name: "echo",
			Args: []args.Spec{args.Arg("text", args.String)},
			Handler: func(_ context.Context, inv *cmd.Invocation) (string, error) {
				return inv.Args.String("text"), nil
			},
		}).
		Command(&cmd.Command{
			Name:        "ban",
			Args:        []args.Spec{args.Arg("user", args.UserArg)},
			Permissions: []cmd.Permission{cmd.PermissionBanMembers},
			Handler: func(_ context.Context, inv *cmd.Invocation) (string, error) {
				return "banned " + inv.Args.Member("user").Username, nil
			},
		}).
		Command(&cmd.Command{
			Name: "broken",
			Handler: func(context.Context, *cmd.Invocation) (string, error) {
				return "", errors.New("database on fire")
			},
		}).
		Listen(event.Message, "count", func(context.Context, event.Event) error {
			f.seen.Add(1)
			return nil
		}).
		Task("ticker", func(ctx context.Context, _ *plugin.Plugin) error {
			f.ready.Add(1)
			<-ctx.Done()
			return nil
		})

	f.set = plugin.NewSet(jobmgr.NewManager(context.Background(), nil))
	require.NoError(t, f.set.Add(b.MustBuild()))
	t.Cleanup(f.set.Shutdown)

	f.router = New(f.platform, f.set, opts...)
	return f
}

func message(authorID, guildID, content string) event.MessageEvent {
	return event.MessageEvent{MessageCreate: &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "alice"},
	}}}
}

func (f *fixture) send(t *testing.T, authorID, guildID, content string) []string {
	t.Helper()
	require.NoError(t, f.router.HandleEvent(context.Background(), message(authorID, guildID, content)))
	var out []string
	for _, r := range f.platform.TakeReplies() {
		out = append(out, r.Text)
	}
	return out
}

func TestCommandRunsAndReplies(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{"hello world"}, f.send(t, "1", "g1", `!echo "hello world"`))
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{"!**nope** isn't a command."}, f.send(t, "1", "g1", "!nope and more"))
}

func TestIgnoredMessages(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.send(t, "bot", "g1", "!echo hi"), "self-authored")
	assert.Empty(t, f.send(t, "1", "", "!echo hi"), "no guild")
	assert.Empty(t, f.send(t, "1", "g1", "!"), "bare prefix")
	assert.Empty(t, f.send(t, "1", "g1", "echo hi"), "no prefix")
}

func TestListenersSeeEveryMessage(t *testing.T) {
	f := newFixture(t)

	f.send(t, "bot", "g1", "!echo hi")
	f.send(t, "1", "g1", "plain chatter")
	f.send(t, "1", "g1", "!echo hi")

	require.Eventually(t, func() bool { return f.seen.Load() == 3 }, time.Second, time.Millisecond)
}

func TestParsingErrorIsReplied(t *testing.T) {
	f := newFixture(t)

	replies := f.send(t, "1", "g1", "!echo")
	require.Len(t, replies, 1)
	assert.Equal(t, "**text** is a required string.\n\n!**echo** text\n\n• String **text**", replies[0])
}

func TestMissingPermissionIsReplied(t *testing.T) {
	f := newFixture(t)

	replies := f.send(t, "1", "g1", "!ban alice#1234")
	assert.Equal(t, []string{"You need the **Ban Members** permission to use this command."}, replies)

	f.platform.Grant("g1", "1", cmd.PermissionBanMembers)
	assert.Equal(t, []string{"banned alice"}, f.send(t, "1", "g1", "!ban <@1>"))
}

func TestHandlerErrorIsReturned(t *testing.T) {
	f := newFixture(t)

	err := f.router.HandleEvent(context.Background(), message("1", "g1", "!broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database on fire")
	assert.Empty(t, f.platform.Replies())
}

func TestPerGuildPrefix(t *testing.T) {
	prefixes := NewPrefixes("", map[string]string{"g1": "?"})
	f := newFixture(t, WithPrefix(prefixes.Func()))

	assert.Empty(t, f.send(t, "1", "g1", "!echo hi"))
	assert.Equal(t, []string{"hi"}, f.send(t, "1", "g1", "?echo hi"))

	require.NoError(t, prefixes.Set("g1", ""))
	assert.Equal(t, []string{"hi"}, f.send(t, "1", "g1", "!echo hi"))
	assert.Error(t, prefixes.Set("g1", "a b"))
}

func TestEmptyPrefixFallsBack(t *testing.T) {
	f := newFixture(t, WithPrefix(func(string) string { return "" }))
	assert.Equal(t, "!", f.router.Prefix("g1"))
}

func TestReadyStartsTasks(t *testing.T) {
	f := newFixture(t)

	ready := event.ReadyEvent{Ready: &discordgo.Ready{}}
	require.NoError(t, f.router.HandleEvent(context.Background(), ready))
	require.NoError(t, f.router.HandleEvent(context.Background(), ready))

	require.Eventually(t, func() bool { return f.ready.Load() == 2 }, time.Second, time.Millisecond)
	assert.True(t, f.set.Jobs().Running(plugin.TaskJobName("test", "ticker")))
	assert.Equal(t, int64(1), f.set.Jobs().Stats().Cancelled)
}

package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/internal/memscope"
	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/internal/router"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
)

// flakyModerator fails for one user id and records the rest.
type flakyModerator struct {
	*memscope.Platform
	failFor string

	mu    sync.Mutex
	calls int
}

func (f *flakyModerator) Kick(ctx context.Context, guildID, userID, reason string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if userID == f.failFor {
		return errors.New("missing access")
	}
	return f.Platform.Kick(ctx, guildID, userID, reason)
}

func setup(t *testing.T, mod Moderator) (*memscope.Platform, *router.Router) {
	t.Helper()
	p := memscope.New("999")
	p.AddGuild(&memscope.Guild{
		ID:   "g1",
		Name: "Test Server",
		Members: []*args.Member{
			{ID: "1", Username: "alice", Discriminator: "1234"},
			{ID: "2", Username: "bob", Discriminator: "0"},
			{ID: "3", Username: "carol", Discriminator: "0"},
			{ID: "999", Username: "detache", Discriminator: "0"},
		},
		Channels: []*args.Channel{{ID: "c1", Name: "general"}},
	})
	if mod == nil {
		mod = p
	}
	if f, ok := mod.(*flakyModerator); ok {
		f.Platform = p
	}

	set := plugin.NewSet(jobmgr.NewManager(context.Background(), nil))
	t.Cleanup(set.Shutdown)
	pl, err := New(mod, p.SelfID)
	require.NoError(t, err)
	require.NoError(t, set.Add(pl))
	return p, router.New(p, set)
}

func say(t *testing.T, p *memscope.Platform, r *router.Router, content string) string {
	t.Helper()
	ev := event.MessageEvent{MessageCreate: &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "1", Username: "alice"},
	}}}
	require.NoError(t, r.HandleEvent(context.Background(), ev))
	replies := p.TakeReplies()
	require.Len(t, replies, 1)
	return replies[0].Text
}

func TestBanRequiresPermission(t *testing.T) {
	p, r := setup(t, nil)

	assert.Equal(t, "You need the **Ban Members** permission to use this command.", say(t, p, r, "!ban <@2>"))
	assert.Empty(t, p.Actions())
}

func TestBanWithReason(t *testing.T) {
	p, r := setup(t, nil)
	p.Grant("g1", "1", cmd.PermissionBanMembers)

	assert.Equal(t, `Banned **bob**, **carol**. Reason: spamming "links"`, say(t, p, r, `!ban <@2> <@!3> spamming '"links"'`))
	assert.ElementsMatch(t, []memscope.Action{
		{Kind: "ban", GuildID: "g1", UserID: "2", Reason: `banned by alice: spamming "links"`},
		{Kind: "ban", GuildID: "g1", UserID: "3", Reason: `banned by alice: spamming "links"`},
	}, p.Actions())
}

func TestRepeatedTargetsActOnce(t *testing.T) {
	p, r := setup(t, nil)
	p.Grant("g1", "1", cmd.PermissionBanMembers)

	assert.Equal(t, "Banned **bob**. Reason: spam", say(t, p, r, "!ban <@2> <@!2> <@2> spam"))
	assert.Equal(t, []memscope.Action{{Kind: "ban", GuildID: "g1", UserID: "2", Reason: "banned by alice: spam"}}, p.Actions())
}

func TestBanNeedsATarget(t *testing.T) {
	p, r := setup(t, nil)
	p.Grant("g1", "1", cmd.PermissionAdministrator)

	out := say(t, p, r, "!ban")
	assert.Contains(t, out, "**members** needs at least one user.")
	assert.Contains(t, out, "!**ban** members... [reason...]")

	out = say(t, p, r, "!ban <@99>")
	assert.Contains(t, out, "<@99> isn't a member of Test Server.")
	assert.Empty(t, p.Actions())
}

func TestRefusesSelfTargets(t *testing.T) {
	p, r := setup(t, nil)
	p.Grant("g1", "1", cmd.PermissionAdministrator)

	assert.Equal(t, "You can't kick yourself.", say(t, p, r, "!kick alice#1234"))
	assert.Equal(t, "I won't ban myself.", say(t, p, r, "!ban <@2> <@999>"))
	assert.Empty(t, p.Actions())
}

func TestKickReportsPartialFailure(t *testing.T) {
	mod := &flakyModerator{failFor: "3"}
	p, r := setup(t, mod)
	p.Grant("g1", "1", cmd.PermissionKickMembers)

	out := say(t, p, r, "!kick <@2> <@3>")
	assert.Equal(t, "Kicked **bob**.\nCouldn't kick **carol** (missing access).", out)
	assert.Equal(t, 2, mod.calls)
	assert.Equal(t, []memscope.Action{{Kind: "kick", GuildID: "g1", UserID: "2", Reason: "kicked by alice"}}, p.Actions())
}

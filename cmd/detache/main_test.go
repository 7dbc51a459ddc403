package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/detache/internal/config"
	"github.com/keshon/detache/internal/console"
	"github.com/keshon/detache/internal/memscope"
)

func TestWireLoadsBuiltinPlugins(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		"DETACHE_GUILD_PREFIXES": console.GuildID + ":$",
	})
	require.NoError(t, err)

	p := memscope.New(console.SelfID)
	guild := console.DemoGuild()
	p.AddGuild(guild)

	r, set, err := wire(context.Background(), cfg, p, nil)
	require.NoError(t, err)
	t.Cleanup(set.Shutdown)

	for _, name := range []string{"help", "ping", "about", "roll", "prefix", "setprefix", "ban", "kick", "activity", "rotation"} {
		_, ok := set.Commands().Get(name)
		assert.True(t, ok, name)
	}
	assert.Equal(t, "$", r.Prefix(console.GuildID))
	assert.Equal(t, "!", r.Prefix("elsewhere"))

	c := console.New(r, p, guild)
	out, _ := c.Exec(context.Background(), "$ping")
	assert.Equal(t, "🏓 Pong!", out)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["console"])
	assert.True(t, names["docs"])
}

func TestDocsCommandPrintsReference(t *testing.T) {
	t.Setenv("DETACHE_PREFIX", "?")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"docs"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "# detache commands")
	assert.Contains(t, out.String(), "### moderation")
	assert.Contains(t, out.String(), "- **`?ban`** - Bans members from the server.")
}

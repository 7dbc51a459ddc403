// Package console drives the router from a terminal against an in-memory
// guild, so plugins can be tried without a Discord connection.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/chzyer/readline"

	"github.com/keshon/detache/internal/event"
	"github.com/keshon/detache/internal/memscope"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
)

const (
	GuildID   = "100"
	ChannelID = "200"
	SelfID    = "1"
)

// Handler is the router.
type Handler interface {
	HandleEvent(ctx context.Context, ev event.Event) error
}

// DemoGuild is the guild the console talks in. The first member is the
// default actor and an administrator.
func DemoGuild() *memscope.Guild {
	return &memscope.Guild{
		ID:   GuildID,
		Name: "Console",
		Members: []*args.Member{
			{ID: "10", Username: "you", Discriminator: "0001"},
			{ID: "11", Username: "alice", Discriminator: "1234"},
			{ID: "12", Username: "bob", Discriminator: "0"},
			{ID: SelfID, Username: "detache", Discriminator: "0"},
		},
		Channels: []*args.Channel{{ID: ChannelID, Name: "general"}, {ID: "201", Name: "random"}},
		Roles:    []*args.Role{{ID: "300", Name: "mods"}},
	}
}

// Console feeds typed lines to the router as messages from the current
// actor. Lines starting with ':' are console commands.
type Console struct {
	h        Handler
	platform *memscope.Platform
	guild    *memscope.Guild
	actor    *args.Member
	nextID   int
}

// New wires a console to h. platform must already hold guild.
func New(h Handler, platform *memscope.Platform, guild *memscope.Guild) *Console {
	c := &Console{h: h, platform: platform, guild: guild, actor: guild.Members[0]}
	platform.Grant(guild.ID, c.actor.ID, cmd.PermissionAdministrator)
	return c
}

// Run reads lines until EOF, Ctrl+C, "exit" or ctx is done.
func (c *Console) Run(ctx context.Context, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.prompt(),
		HistoryFile:     filepath.Join(os.TempDir(), ".detache_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          out,
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	fmt.Fprintln(out, "Type messages as you would in Discord. :help lists console commands.")
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		text, quit := c.Exec(ctx, line)
		if text != "" {
			fmt.Fprintln(out, text)
		}
		if quit {
			return nil
		}
		rl.SetPrompt(c.prompt())
	}
}

func (c *Console) prompt() string {
	return fmt.Sprintf("%s@#general> ", c.actor.Username)
}

// Exec handles one line and returns what to print. quit is true for "exit"
// and "quit".
func (c *Console) Exec(ctx context.Context, line string) (text string, quit bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return "", false
	case line == "exit" || line == "quit":
		return "Goodbye!", true
	case strings.HasPrefix(line, ":"):
		return c.meta(ctx, line[1:]), false
	}

	c.nextID++
	ev := event.MessageEvent{MessageCreate: &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        fmt.Sprintf("m%d", c.nextID),
		ChannelID: ChannelID,
		GuildID:   c.guild.ID,
		Content:   line,
		Author: &discordgo.User{
			ID:            c.actor.ID,
			Username:      c.actor.Username,
			Discriminator: c.actor.Discriminator,
		},
	}}}
	err := c.h.HandleEvent(ctx, ev)
	return c.collect(err), false
}

func (c *Console) meta(ctx context.Context, line string) string {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "help":
		return strings.Join([]string{
			":as <user>        speak as another member",
			":grant <perm>     give the current member a permission",
			":members          list members",
			":ready            send a ready event (restarts background tasks)",
			":join <user>      send a member join event",
			":actions          list bans and kicks so far",
			":status           show the bot's status line",
			"exit              leave",
		}, "\n")

	case "as":
		for _, m := range c.guild.Members {
			if m.Username == rest {
				c.actor = m
				return "Now speaking as " + m.Tag() + "."
			}
		}
		return fmt.Sprintf("No member called %q.", rest)

	case "grant":
		if rest == "" {
			return "Usage: :grant <permission>"
		}
		p := cmd.Permission(rest)
		c.platform.Grant(c.guild.ID, c.actor.ID, p)
		return fmt.Sprintf("Granted %s to %s.", p.Title(), c.actor.Username)

	case "members":
		names := make([]string, 0, len(c.guild.Members))
		for _, m := range c.guild.Members {
			if m.HasTag() {
				names = append(names, fmt.Sprintf("%s: %s or %s", m.Username, m.Tag(), m.Mention()))
				continue
			}
			names = append(names, fmt.Sprintf("%s: %s", m.Username, m.Mention()))
		}
		sort.Strings(names)
		return strings.Join(names, "\n")

	case "ready":
		ev := event.ReadyEvent{Ready: &discordgo.Ready{
			User: &discordgo.User{ID: SelfID, Username: "detache"},
		}}
		return c.collect(c.h.HandleEvent(ctx, ev))

	case "join":
		if rest == "" {
			return "Usage: :join <user>"
		}
		c.nextID++
		ev := event.MemberJoinEvent{GuildMemberAdd: &discordgo.GuildMemberAdd{Member: &discordgo.Member{
			GuildID: c.guild.ID,
			User:    &discordgo.User{ID: fmt.Sprintf("9%d", c.nextID), Username: rest},
		}}}
		return c.collect(c.h.HandleEvent(ctx, ev))

	case "actions":
		var lines []string
		for _, a := range c.platform.Actions() {
			l := fmt.Sprintf("%s <@%s>", a.Kind, a.UserID)
			if a.Reason != "" {
				l += " - " + a.Reason
			}
			lines = append(lines, l)
		}
		if len(lines) == 0 {
			return "No moderation actions yet."
		}
		return strings.Join(lines, "\n")

	case "status":
		if s := c.platform.Status(); s != "" {
			return "Status: " + s
		}
		return "No status set."
	}
	return fmt.Sprintf("Unknown console command :%s, try :help.", name)
}

// collect renders the replies the last event produced, then err.
func (c *Console) collect(err error) string {
	var parts []string
	for _, r := range c.platform.TakeReplies() {
		parts = append(parts, r.Text)
	}
	if err != nil {
		parts = append(parts, "error: "+err.Error())
	}
	return strings.Join(parts, "\n")
}

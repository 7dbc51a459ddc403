// Package core is the built-in plugin every bot gets: help, ping, about,
// dice rolls and prefix management.
package core

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/pkg/args"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
	"github.com/keshon/detache/pkg/util"
)

// Catalog is what help and about read. *plugin.Set implements it.
type Catalog interface {
	Commands() *cmd.Registry
	Jobs() *jobmgr.Manager
}

// Prefixer reads and overrides per-guild prefixes. *router.Prefixes
// implements it.
type Prefixer interface {
	Get(guildID string) string
	Set(guildID, prefix string) error
}

type Options struct {
	AppName string
	Version string
	Started time.Time

	Prefixes Prefixer
	// Latency reports the gateway heartbeat latency, if there is one.
	Latency func() time.Duration
	// Intn overrides the dice source; it must return a value in [0, n).
	Intn func(n int) int
}

type core struct {
	cat    Catalog
	opts   Options
	roller roller
}

// New builds the core plugin.
func New(cat Catalog, opts Options) (*plugin.Plugin, error) {
	if opts.AppName == "" {
		opts.AppName = "detache"
	}
	if opts.Started.IsZero() {
		opts.Started = time.Now()
	}
	intn := opts.Intn
	if intn == nil {
		intn = rand.Intn
	}
	c := &core{cat: cat, opts: opts, roller: roller{intn: intn}}

	b := plugin.New("core").
		Command(&cmd.Command{
			Name:        "help",
			Description: "Lists commands, or shows how to use one.",
			Args:        []args.Spec{args.Arg("command", args.Any).Optional(nil).WithHelp("command to explain")},
			Handler:     c.help,
		}).
		Command(&cmd.Command{
			Name:        "ping",
			Description: "Checks that the bot is alive.",
			Handler:     c.ping,
		}).
		Command(&cmd.Command{
			Name:        "about",
			Description: "Shows version, uptime and running jobs.",
			Handler:     c.about,
		}).
		Command(&cmd.Command{
			Name:        "roll",
			Description: "Rolls dice with formulas like `2d6+1d4*2-3`.",
			Args:        []args.Spec{args.Arg("formula", args.Any).Optional(nil).Many().WithHelp("defaults to 1d6")},
			Handler:     c.roll,
		})

	if opts.Prefixes != nil {
		b.Command(&cmd.Command{
			Name:        "prefix",
			Description: "Shows the command prefix for this server.",
			Handler:     c.prefix,
		}).Command(&cmd.Command{
			Name:        "setprefix",
			Description: "Changes the command prefix for this server until restart. No argument resets it.",
			Args:        []args.Spec{args.Arg("prefix", args.Any).Optional("")},
			Permissions: []cmd.Permission{cmd.PermissionManageGuild},
			Handler:     c.setPrefix,
		})
	}
	return b.Build()
}

func (c *core) help(_ context.Context, inv *cmd.Invocation) (string, error) {
	if name := inv.Args.String("command"); name != "" {
		name = strings.TrimPrefix(name, inv.Prefix)
		target, ok := c.cat.Commands().Get(name)
		if !ok {
			return fmt.Sprintf("%s**%s** isn't a command.", inv.Prefix, name), nil
		}
		return target.Usage(inv.Prefix), nil
	}

	var b strings.Builder
	b.WriteString("**Commands**\n")
	for _, command := range c.cat.Commands().All() {
		fmt.Fprintf(&b, "\n`%s%s`", inv.Prefix, command.Name)
		if command.Description != "" {
			b.WriteString(" - " + command.Description)
		}
	}
	fmt.Fprintf(&b, "\n\nType `%shelp command` for details.", inv.Prefix)
	return b.String(), nil
}

func (c *core) ping(context.Context, *cmd.Invocation) (string, error) {
	if c.opts.Latency != nil {
		if d := c.opts.Latency(); d > 0 {
			return fmt.Sprintf("🏓 Pong! %dms", d.Milliseconds()), nil
		}
	}
	return "🏓 Pong!", nil
}

func (c *core) about(context.Context, *cmd.Invocation) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", c.opts.AppName)
	if c.opts.Version != "" {
		fmt.Fprintf(&b, " %s", c.opts.Version)
	}
	fmt.Fprintf(&b, "\nUp %s, since %s",
		util.FormatUptime(time.Since(c.opts.Started)),
		util.FormatDateTpl(c.opts.Started.UTC(), "YYYY-MM-DD hh:mm UTC"))
	fmt.Fprintf(&b, "\n%d commands loaded", c.cat.Commands().Len())

	stats := c.cat.Jobs().Stats()
	fmt.Fprintf(&b, "\n%s\nJobs started: %d, cancelled: %d, failed: %d",
		c.cat.Jobs().Status(), stats.Started, stats.Cancelled, stats.Failed)
	return b.String(), nil
}

func (c *core) roll(_ context.Context, inv *cmd.Invocation) (string, error) {
	formula := strings.Join(inv.Args.Strings("formula"), "")
	if formula == "" {
		formula = "1d6"
	}
	total, detail, err := c.roller.roll(formula)
	if err != nil {
		return "🎲 " + err.Error(), nil
	}
	return fmt.Sprintf("🎲 **%s** rolled `%s`\n%s = **%d**", inv.Actor.Name, formula, detail, total), nil
}

func (c *core) prefix(_ context.Context, inv *cmd.Invocation) (string, error) {
	return fmt.Sprintf("The prefix here is `%s`.", c.opts.Prefixes.Get(inv.GuildID)), nil
}

func (c *core) setPrefix(_ context.Context, inv *cmd.Invocation) (string, error) {
	if err := c.opts.Prefixes.Set(inv.GuildID, inv.Args.String("prefix")); err != nil {
		return "", err
	}
	return fmt.Sprintf("Prefix is now `%s`.", c.opts.Prefixes.Get(inv.GuildID)), nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/keshon/detache/internal/config"
	"github.com/keshon/detache/internal/console"
	"github.com/keshon/detache/internal/logging"
	"github.com/keshon/detache/internal/memscope"
)

func newConsoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "console",
		Aliases: []string{"c"},
		Short:   "Try the bot's commands in a local in-memory guild",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			closer, err := logging.Setup(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx := c.Context()
			platform := memscope.New(console.SelfID)
			guild := console.DemoGuild()
			platform.AddGuild(guild)

			r, set, err := wire(ctx, cfg, platform, nil)
			if err != nil {
				return err
			}
			defer set.Shutdown()

			return console.New(r, platform, guild).Run(ctx, c.OutOrStdout())
		},
	}
}

package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/detache/internal/config"
	"github.com/keshon/detache/internal/discord"
	"github.com/keshon/detache/internal/logging"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands until interrupted",
		Args:  cobra.NoArgs,
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

			if err := cfg.RequireToken(); err != nil {
				return err
			}

			bot, err := discord.New(cfg.DiscordToken, discord.WithReplyRate(cfg.ReplyRate, cfg.ReplyAttempts))
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(c.Context())
			r, set, err := wire(ctx, cfg, bot, bot.Session().HeartbeatLatency)
			if err != nil {
				return err
			}

			log.Info().Str("version", version).Msgf("starting %s bot", appName)
			g.Go(func() error { return bot.Run(ctx, r) })
			g.Go(func() error {
				<-ctx.Done()
				set.Shutdown()
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}
			log.Info().Msg("discord bot exited cleanly")
			return nil
		},
	}
}

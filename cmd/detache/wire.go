package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/detache/internal/config"
	"github.com/keshon/detache/internal/plugin"
	"github.com/keshon/detache/internal/plugins/activity"
	"github.com/keshon/detache/internal/plugins/core"
	"github.com/keshon/detache/internal/plugins/moderation"
	"github.com/keshon/detache/internal/router"
	"github.com/keshon/detache/pkg/cmd"
	"github.com/keshon/detache/pkg/jobmgr"
)

// host is everything the built-in plugins need from a transport. Both
// *discord.Bot and *memscope.Platform satisfy it.
type host interface {
	router.Platform
	moderation.Moderator
	activity.Presence
}

// wire assembles the plugin set and router for h. latency may be nil.
func wire(ctx context.Context, cfg *config.Config, h host, latency func() time.Duration) (*router.Router, *plugin.Set, error) {
	jobs := jobmgr.NewManager(ctx, plugin.LogReporter(log.With().Str("component", "jobs").Logger()))
	set := plugin.NewSet(jobs, cmd.WithRecover(), cmd.WithLogger(log.Logger))
	prefixes := router.NewPrefixes(cfg.Prefix, cfg.GuildPrefixes)

	corePlugin, err := core.New(set, core.Options{
		AppName:  appName,
		Version:  version,
		Started:  time.Now(),
		Prefixes: prefixes,
		Latency:  latency,
	})
	if err != nil {
		return nil, nil, err
	}
	modPlugin, err := moderation.New(h, h.SelfID)
	if err != nil {
		return nil, nil, err
	}
	activityPlugin, _, err := activity.New(h, activity.Options{
		Statuses: cfg.Statuses,
		Interval: cfg.StatusInterval,
	})
	if err != nil {
		return nil, nil, err
	}

	for _, p := range []*plugin.Plugin{corePlugin, modPlugin, activityPlugin} {
		if err := set.Add(p); err != nil {
			set.Shutdown()
			return nil, nil, err
		}
	}
	log.Info().Int("plugins", len(set.Plugins())).Int("commands", set.Commands().Len()).Msg("plugins loaded")

	return router.New(h, set, router.WithPrefix(prefixes.Func())), set, nil
}

package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/detache/internal/event"
)

func (b *Bot) registerHandlers() {
	s := b.session
	s.AddHandler(b.onReady)
	s.AddHandler(b.onGuildCreate)
	s.AddHandler(b.onGuildDelete)

	s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageCreate) { b.dispatch(event.MessageEvent{MessageCreate: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageUpdate) { b.dispatch(event.MessageEditEvent{MessageUpdate: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageDelete) {
		for _, ev := range translateMessageDelete(e) {
			b.dispatch(ev)
		}
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageReactionAdd) {
		b.dispatch(event.ReactionAddEvent{MessageReactionAdd: e})
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageReactionRemove) {
		b.dispatch(event.ReactionRemoveEvent{MessageReactionRemove: e})
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageReactionRemoveAll) {
		b.dispatch(event.ReactionClearEvent{MessageReactionRemoveAll: e})
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.TypingStart) { b.dispatch(event.TypingEvent{TypingStart: e}) })

	s.AddHandler(func(_ *discordgo.Session, e *discordgo.ChannelCreate) { b.dispatch(translateChannelCreate(e)) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.ChannelUpdate) { b.dispatch(translateChannelUpdate(e)) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.ChannelDelete) { b.dispatch(translateChannelDelete(e)) })

	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildMemberAdd) { b.dispatch(event.MemberJoinEvent{GuildMemberAdd: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildMemberRemove) {
		b.dispatch(event.MemberRemoveEvent{GuildMemberRemove: e})
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildMemberUpdate) {
		b.dispatch(event.MemberUpdateEvent{GuildMemberUpdate: e})
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildBanAdd) { b.dispatch(event.MemberBanEvent{GuildBanAdd: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildBanRemove) { b.dispatch(event.MemberUnbanEvent{GuildBanRemove: e}) })

	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildUpdate) { b.dispatch(event.GuildUpdateEvent{GuildUpdate: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildRoleCreate) { b.dispatch(event.RoleCreateEvent{GuildRoleCreate: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildRoleUpdate) { b.dispatch(event.RoleUpdateEvent{GuildRoleUpdate: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildRoleDelete) { b.dispatch(event.RoleDeleteEvent{GuildRoleDelete: e}) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildEmojisUpdate) {
		b.dispatch(event.EmojisUpdateEvent{GuildEmojisUpdate: e})
	})
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	name := ""
	if r.User != nil {
		name = r.User.Username
	}
	b.log.Info().Str("user", name).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
	b.dispatch(event.ReadyEvent{Ready: r})
	b.dispatch(event.ShardReadyEvent{Ready: r, ShardID: b.session.ShardID})
}

// translateMessageDelete always yields the raw event, and the cached one too
// when the state still held the message.
func translateMessageDelete(e *discordgo.MessageDelete) []event.Event {
	out := []event.Event{event.RawMessageDeleteEvent{MessageDelete: e}}
	if e.BeforeDelete != nil {
		out = append(out, event.MessageDeleteEvent{MessageDelete: e})
	}
	return out
}

// Channels outside any guild are DMs and group DMs.

func translateChannelCreate(e *discordgo.ChannelCreate) event.Event {
	if e.Channel != nil && e.GuildID == "" {
		return event.PrivateChannelCreateEvent{ChannelCreate: e}
	}
	return event.ChannelCreateEvent{ChannelCreate: e}
}

func translateChannelUpdate(e *discordgo.ChannelUpdate) event.Event {
	if e.Channel != nil && e.GuildID == "" {
		return event.PrivateChannelUpdateEvent{ChannelUpdate: e}
	}
	return event.ChannelUpdateEvent{ChannelUpdate: e}
}

func translateChannelDelete(e *discordgo.ChannelDelete) event.Event {
	if e.Channel != nil && e.GuildID == "" {
		return event.PrivateChannelDeleteEvent{ChannelDelete: e}
	}
	return event.ChannelDeleteEvent{ChannelDelete: e}
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil {
		return
	}
	b.dispatch(b.translateGuildCreate(g))
}

func (b *Bot) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Guild == nil {
		return
	}
	b.dispatch(b.translateGuildDelete(g))
}

// translateGuildCreate tells a guild coming online after Ready (or after an
// outage) apart from the bot being added to a new guild. Handlers run on
// their own goroutines, so the decision uses only the event's JoinedAt and
// outages recorded by an earlier GuildDelete, never the Ready payload.
func (b *Bot) translateGuildCreate(g *discordgo.GuildCreate) event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, outage := b.pending[g.ID]
	delete(b.pending, g.ID)
	if outage || (!g.JoinedAt.IsZero() && g.JoinedAt.Before(b.started)) {
		return event.GuildAvailableEvent{GuildCreate: g}
	}
	b.log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("bot added to guild")
	return event.GuildJoinEvent{GuildCreate: g}
}

// translateGuildDelete also remembers outages so the guild's return is an
// availability event.
func (b *Bot) translateGuildDelete(g *discordgo.GuildDelete) event.Event {
	if g.Unavailable {
		b.mu.Lock()
		b.pending[g.ID] = struct{}{}
		b.mu.Unlock()
		return event.GuildUnavailableEvent{GuildDelete: g}
	}
	b.mu.Lock()
	delete(b.pending, g.ID)
	b.mu.Unlock()
	return event.GuildRemoveEvent{GuildDelete: g}
}

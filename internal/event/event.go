// Package event defines the platform events plugins can listen to. The set of
// kinds is closed: every kind has one payload type, and each payload embeds
// the discordgo event it was translated from.
package event

import "fmt"

// Kind identifies an event.
type Kind int

const (
	Ready Kind = iota + 1
	Message
	MessageEdit
	MessageDelete
	ReactionAdd
	ReactionRemove
	ReactionClear
	Typing
	ChannelCreate
	ChannelUpdate
	ChannelDelete
	MemberJoin
	MemberRemove
	MemberUpdate
	MemberBan
	MemberUnban
	GuildJoin
	GuildRemove
	GuildUpdate
	RoleCreate
	RoleUpdate
	RoleDelete
	EmojisUpdate
	GuildAvailable
	GuildUnavailable
	RawMessageDelete
	PrivateChannelCreate
	PrivateChannelUpdate
	PrivateChannelDelete
	ShardReady
)

var kindNames = map[Kind]string{
	Ready:            "on_ready",
	Message:          "on_message",
	MessageEdit:      "on_message_edit",
	MessageDelete:    "on_message_delete",
	ReactionAdd:      "on_reaction_add",
	ReactionRemove:   "on_reaction_remove",
	ReactionClear:    "on_reaction_clear",
	Typing:           "on_typing",
	ChannelCreate:    "on_guild_channel_create",
	ChannelUpdate:    "on_guild_channel_update",
	ChannelDelete:    "on_guild_channel_delete",
	MemberJoin:       "on_member_join",
	MemberRemove:     "on_member_remove",
	MemberUpdate:     "on_member_update",
	MemberBan:        "on_member_ban",
	MemberUnban:      "on_member_unban",
	GuildJoin:        "on_guild_join",
	GuildRemove:      "on_guild_remove",
	GuildUpdate:      "on_guild_update",
	RoleCreate:       "on_guild_role_create",
	RoleUpdate:       "on_guild_role_update",
	RoleDelete:       "on_guild_role_delete",
	EmojisUpdate:     "on_guild_emojis_update",
	GuildAvailable:   "on_guild_available",
	GuildUnavailable: "on_guild_unavailable",

	RawMessageDelete:     "on_raw_message_delete",
	PrivateChannelCreate: "on_private_channel_create",
	PrivateChannelUpdate: "on_private_channel_update",
	PrivateChannelDelete: "on_private_channel_delete",
	ShardReady:           "on_shard_ready",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := Ready; k <= ShardReady; k++ {
		out = append(out, k)
	}
	return out
}

// Event is a payload delivered to listeners.
type Event interface {
	Kind() Kind
}

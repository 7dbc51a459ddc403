package event

import "github.com/bwmarrin/discordgo"

type (
	ReadyEvent            struct{ *discordgo.Ready }
	MessageEvent          struct{ *discordgo.MessageCreate }
	MessageEditEvent      struct{ *discordgo.MessageUpdate }
	MessageDeleteEvent    struct{ *discordgo.MessageDelete }
	ReactionAddEvent      struct{ *discordgo.MessageReactionAdd }
	ReactionRemoveEvent   struct{ *discordgo.MessageReactionRemove }
	ReactionClearEvent    struct{ *discordgo.MessageReactionRemoveAll }
	TypingEvent           struct{ *discordgo.TypingStart }
	ChannelCreateEvent    struct{ *discordgo.ChannelCreate }
	ChannelUpdateEvent    struct{ *discordgo.ChannelUpdate }
	ChannelDeleteEvent    struct{ *discordgo.ChannelDelete }
	MemberJoinEvent       struct{ *discordgo.GuildMemberAdd }
	MemberRemoveEvent     struct{ *discordgo.GuildMemberRemove }
	MemberUpdateEvent     struct{ *discordgo.GuildMemberUpdate }
	MemberBanEvent        struct{ *discordgo.GuildBanAdd }
	MemberUnbanEvent      struct{ *discordgo.GuildBanRemove }
	GuildJoinEvent        struct{ *discordgo.GuildCreate }
	GuildRemoveEvent      struct{ *discordgo.GuildDelete }
	GuildUpdateEvent      struct{ *discordgo.GuildUpdate }
	RoleCreateEvent       struct{ *discordgo.GuildRoleCreate }
	RoleUpdateEvent       struct{ *discordgo.GuildRoleUpdate }
	RoleDeleteEvent       struct{ *discordgo.GuildRoleDelete }
	EmojisUpdateEvent     struct{ *discordgo.GuildEmojisUpdate }
	GuildAvailableEvent   struct{ *discordgo.GuildCreate }
	GuildUnavailableEvent struct{ *discordgo.GuildDelete }

	// MessageDeleteEvent only fires for messages still in the state cache;
	// RawMessageDeleteEvent fires for every deletion.
	RawMessageDeleteEvent struct{ *discordgo.MessageDelete }

	PrivateChannelCreateEvent struct{ *discordgo.ChannelCreate }
	PrivateChannelUpdateEvent struct{ *discordgo.ChannelUpdate }
	PrivateChannelDeleteEvent struct{ *discordgo.ChannelDelete }

	// ShardReadyEvent follows the Ready of the shard with this id.
	ShardReadyEvent struct {
		*discordgo.Ready
		ShardID int
	}
)

func (ReadyEvent) Kind() Kind            { return Ready }
func (MessageEvent) Kind() Kind          { return Message }
func (MessageEditEvent) Kind() Kind      { return MessageEdit }
func (MessageDeleteEvent) Kind() Kind    { return MessageDelete }
func (ReactionAddEvent) Kind() Kind      { return ReactionAdd }
func (ReactionRemoveEvent) Kind() Kind   { return ReactionRemove }
func (ReactionClearEvent) Kind() Kind    { return ReactionClear }
func (TypingEvent) Kind() Kind           { return Typing }
func (ChannelCreateEvent) Kind() Kind    { return ChannelCreate }
func (ChannelUpdateEvent) Kind() Kind    { return ChannelUpdate }
func (ChannelDeleteEvent) Kind() Kind    { return ChannelDelete }
func (MemberJoinEvent) Kind() Kind       { return MemberJoin }
func (MemberRemoveEvent) Kind() Kind     { return MemberRemove }
func (MemberUpdateEvent) Kind() Kind     { return MemberUpdate }
func (MemberBanEvent) Kind() Kind        { return MemberBan }
func (MemberUnbanEvent) Kind() Kind      { return MemberUnban }
func (GuildJoinEvent) Kind() Kind        { return GuildJoin }
func (GuildRemoveEvent) Kind() Kind      { return GuildRemove }
func (GuildUpdateEvent) Kind() Kind      { return GuildUpdate }
func (RoleCreateEvent) Kind() Kind       { return RoleCreate }
func (RoleUpdateEvent) Kind() Kind       { return RoleUpdate }
func (RoleDeleteEvent) Kind() Kind       { return RoleDelete }
func (EmojisUpdateEvent) Kind() Kind     { return EmojisUpdate }
func (GuildAvailableEvent) Kind() Kind   { return GuildAvailable }
func (GuildUnavailableEvent) Kind() Kind { return GuildUnavailable }

func (RawMessageDeleteEvent) Kind() Kind     { return RawMessageDelete }
func (PrivateChannelCreateEvent) Kind() Kind { return PrivateChannelCreate }
func (PrivateChannelUpdateEvent) Kind() Kind { return PrivateChannelUpdate }
func (PrivateChannelDeleteEvent) Kind() Kind { return PrivateChannelDelete }
func (ShardReadyEvent) Kind() Kind           { return ShardReady }

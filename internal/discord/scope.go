package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/detache/pkg/args"
)

// guildScope resolves arguments against one guild in the state cache. Only
// cached members can be found; with the members intent that is all of them.
type guildScope struct {
	state   *discordgo.State
	guildID string
	name    string
}

func newGuildScope(state *discordgo.State, guildID string) (*guildScope, bool) {
	g, err := state.Guild(guildID)
	if err != nil {
		return nil, false
	}
	return &guildScope{state: state, guildID: guildID, name: g.Name}, true
}

func (s *guildScope) ScopeName() string { return s.name }

func (s *guildScope) MemberByID(id string) (*args.Member, bool) {
	m, err := s.state.Member(s.guildID, id)
	if err != nil || m.User == nil {
		return nil, false
	}
	return toMember(m), true
}

// MemberByTag matches name#discriminator exactly, or the bare username for
// accounts without a discriminator.
func (s *guildScope) MemberByTag(tag string) (*args.Member, bool) {
	g, err := s.state.Guild(s.guildID)
	if err != nil {
		return nil, false
	}
	s.state.RLock()
	defer s.state.RUnlock()
	for _, m := range g.Members {
		if m.User == nil {
			continue
		}
		if m.User.Username+"#"+m.User.Discriminator == tag {
			return toMember(m), true
		}
	}
	return nil, false
}

func (s *guildScope) ChannelByID(id string) (*args.Channel, bool) {
	c, err := s.state.Channel(id)
	if err != nil || c.GuildID != s.guildID {
		return nil, false
	}
	return toChannel(c), true
}

func (s *guildScope) ChannelByName(name string) (*args.Channel, bool) {
	g, err := s.state.Guild(s.guildID)
	if err != nil {
		return nil, false
	}
	s.state.RLock()
	defer s.state.RUnlock()
	for _, c := range g.Channels {
		if c.Name == name {
			return toChannel(c), true
		}
	}
	return nil, false
}

func (s *guildScope) RoleByID(id string) (*args.Role, bool) {
	r, err := s.state.Role(s.guildID, id)
	if err != nil {
		return nil, false
	}
	return toRole(r), true
}

func (s *guildScope) RoleByName(name string) (*args.Role, bool) {
	g, err := s.state.Guild(s.guildID)
	if err != nil {
		return nil, false
	}
	s.state.RLock()
	defer s.state.RUnlock()
	for _, r := range g.Roles {
		if r.Name == name {
			return toRole(r), true
		}
	}
	return nil, false
}

func toMember(m *discordgo.Member) *args.Member {
	return &args.Member{
		ID:            m.User.ID,
		Username:      m.User.Username,
		Discriminator: m.User.Discriminator,
		Nick:          m.Nick,
		Raw:           m,
	}
}

func toChannel(c *discordgo.Channel) *args.Channel {
	return &args.Channel{ID: c.ID, Name: c.Name, Raw: c}
}

func toRole(r *discordgo.Role) *args.Role {
	return &args.Role{ID: r.ID, Name: r.Name, Raw: r}
}

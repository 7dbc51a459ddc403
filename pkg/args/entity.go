package args

// Member is a user resolved inside a scope.
type Member struct {
	ID            string
	Username      string
	Discriminator string
	Nick          string
	Raw           any
}

// HasTag reports whether the member still has a legacy name#1234 tag.
// Accounts migrated to unique usernames carry discriminator "0".
func (m *Member) HasTag() bool {
	return m.Discriminator != "" && m.Discriminator != "0"
}

// Tag returns the name#discriminator form used to reference a member by name,
// or the bare username when the member has no tag.
func (m *Member) Tag() string {
	if !m.HasTag() {
		return m.Username
	}
	return m.Username + "#" + m.Discriminator
}

// Mention returns the platform mention syntax for the member.
func (m *Member) Mention() string { return "<@" + m.ID + ">" }

// Channel is a text channel resolved inside a scope.
type Channel struct {
	ID   string
	Name string
	Raw  any
}

func (c *Channel) Mention() string { return "<#" + c.ID + ">" }

// Role is a role resolved inside a scope.
type Role struct {
	ID   string
	Name string
	Raw  any
}

func (r *Role) Mention() string { return "<@&" + r.ID + ">" }

// Resolver looks up entities inside one scope (a guild). Every lookup reports
// a miss the same way, with ok == false.
type Resolver interface {
	ScopeName() string
	MemberByID(id string) (*Member, bool)
	MemberByTag(tag string) (*Member, bool)
	ChannelByID(id string) (*Channel, bool)
	ChannelByName(name string) (*Channel, bool)
	RoleByID(id string) (*Role, bool)
	RoleByName(name string) (*Role, bool)
}

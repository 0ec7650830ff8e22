package policy

// Grant declares that a principal may read a channel.
type Grant struct {
	User    string `json:"user" yaml:"user"`
	Channel string `json:"channel" yaml:"channel"`
}

// RoleAssignment declares that a principal holds a role.
type RoleAssignment struct {
	User string `json:"user" yaml:"user"`
	Role string `json:"role" yaml:"role"`
}

// Result carries the routing and access declarations of an accepted write.
// The hosting runtime applies it atomically with acceptance of the revision.
// Deletes produce an empty result: tombstones are not re-routed and grant
// history from prior revisions stays authoritative.
type Result struct {
	Channels []string         `json:"channels,omitempty" yaml:"channels,omitempty"`
	Grants   []Grant          `json:"grants,omitempty" yaml:"grants,omitempty"`
	Roles    []RoleAssignment `json:"roles,omitempty" yaml:"roles,omitempty"`
}

func (r *Result) channel(name string) {
	r.Channels = append(r.Channels, name)
}

func (r *Result) access(user, channel string) {
	r.Grants = append(r.Grants, Grant{User: user, Channel: channel})
}

func (r *Result) role(user, role string) {
	r.Roles = append(r.Roles, RoleAssignment{User: user, Role: role})
}

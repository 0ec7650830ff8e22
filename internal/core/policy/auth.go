package policy

import "fmt"

// Principal is the authenticated actor attempting a write, resolved by the
// hosting runtime before the policy runs. CanRead reflects the actor's
// effective read set: the union of every channel they have been granted.
type Principal interface {
	Name() string
	HasRole(role string) bool
	CanRead(channel string) bool
}

// StaticPrincipal is a Principal with a fixed role and channel set. Used by
// dry-run evaluation and tests; the gateway resolves principals from its
// config and grant ledger instead.
type StaticPrincipal struct {
	User     string
	Roles    []string
	Channels []string
}

func (p StaticPrincipal) Name() string { return p.User }

func (p StaticPrincipal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p StaticPrincipal) CanRead(channel string) bool {
	for _, c := range p.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

func requireUser(p Principal, user string) error {
	if p.Name() != user {
		return &Unauthorized{Reason: fmt.Sprintf("user %q is required", user)}
	}
	return nil
}

func requireRole(p Principal, role string) error {
	if !p.HasRole(role) {
		return &Unauthorized{Reason: fmt.Sprintf("role %q is required", role)}
	}
	return nil
}

func requireAccess(p Principal, channel string) error {
	if !p.CanRead(channel) {
		return &Unauthorized{Reason: fmt.Sprintf("read access to channel %q is required", channel)}
	}
	return nil
}

// requireEither succeeds if primary succeeds, otherwise defers entirely to
// fallback. A failure carries the fallback's reason, not the primary's.
func requireEither(primary, fallback func() error) error {
	if err := primary(); err != nil {
		return fallback()
	}
	return nil
}

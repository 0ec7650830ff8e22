package gateway

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/writegate/internal/core/policy"
)

// principal resolves a user's effective capabilities: roles and exact
// channels from the grant ledger unioned with the static declarations in
// config. Config channels are glob patterns so a single entry can cover a
// family of channels (e.g. "task-list:alice:*").
type principal struct {
	name     string
	roles    map[string]struct{}
	channels map[string]struct{}
	patterns []string
}

var _ policy.Principal = (*principal)(nil)

// NewPrincipal builds a principal from explicit roles, exact channel
// grants, and channel glob patterns. The service resolves actors through it;
// dry-run evaluation uses it directly so config patterns carry the same
// meaning whether or not the ledger is consulted.
func NewPrincipal(name string, roles, channels, patterns []string) policy.Principal {
	p := &principal{
		name:     name,
		roles:    make(map[string]struct{}, len(roles)),
		channels: make(map[string]struct{}, len(channels)),
		patterns: patterns,
	}
	for _, r := range roles {
		p.roles[r] = struct{}{}
	}
	for _, c := range channels {
		p.channels[c] = struct{}{}
	}
	return p
}

func (p *principal) Name() string { return p.name }

func (p *principal) HasRole(role string) bool {
	_, ok := p.roles[role]
	return ok
}

func (p *principal) CanRead(channel string) bool {
	if _, ok := p.channels[channel]; ok {
		return true
	}
	for _, pattern := range p.patterns {
		if ok, err := doublestar.Match(pattern, channel); err == nil && ok {
			return true
		}
	}
	return false
}

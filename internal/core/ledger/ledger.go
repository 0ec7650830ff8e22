// Package ledger defines the domain types and store interface for the local
// gateway ledger: accepted revisions, channel routing, and the access grants
// accumulated from accepted writes.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/colonyops/writegate/internal/core/policy"
)

// ErrNotFound is returned when no revision of a document exists.
var ErrNotFound = errors.New("revision not found")

// Revision is the current accepted state of a document id. Rev is a local
// monotonically increasing sequence, not the replication store's revision
// string.
type Revision struct {
	ID        string
	Rev       int64
	Type      string
	Deleted   bool
	Doc       *policy.Document
	UpdatedAt time.Time
}

// ChannelGrant records that a user may read a channel, and which document's
// acceptance established it.
type ChannelGrant struct {
	User      string
	Channel   string
	GrantedBy string
	CreatedAt time.Time
}

// RoleGrant records that a user holds a role, and which document's
// acceptance established it.
type RoleGrant struct {
	User      string
	Role      string
	GrantedBy string
	CreatedAt time.Time
}

// AcceptedWrite bundles everything an accepted write persists: the new
// revision plus the declarations the policy produced for it.
type AcceptedWrite struct {
	Revision Revision
	Channels []string
	Grants   []ChannelGrant
	Roles    []RoleGrant
}

// Store persists the ledger. ApplyWrite is atomic: either the revision and
// all of its declarations land, or none do.
type Store interface {
	Revision(ctx context.Context, id string) (Revision, error)
	Revisions(ctx context.Context) ([]Revision, error)
	DocChannels(ctx context.Context, docID string) ([]string, error)
	AllDocChannels(ctx context.Context) (map[string][]string, error)
	ChannelsForUser(ctx context.Context, user string) ([]string, error)
	RolesForUser(ctx context.Context, user string) ([]string, error)
	ChannelGrants(ctx context.Context) ([]ChannelGrant, error)
	RoleGrants(ctx context.Context) ([]RoleGrant, error)
	ApplyWrite(ctx context.Context, w AcceptedWrite) error
}

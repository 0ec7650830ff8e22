// Package stores implements the ledger store interfaces over SQLite.
package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/writegate/internal/core/ledger"
	"github.com/colonyops/writegate/internal/core/policy"
	"github.com/colonyops/writegate/internal/data/db"
)

// LedgerStore implements ledger.Store using SQLite.
type LedgerStore struct {
	db *db.DB
}

var _ ledger.Store = (*LedgerStore)(nil)

// NewLedgerStore creates a new SQLite-backed ledger store.
func NewLedgerStore(db *db.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Revision returns the current revision of a document.
// Returns ledger.ErrNotFound if no revision exists.
func (s *LedgerStore) Revision(ctx context.Context, id string) (ledger.Revision, error) {
	row, err := s.db.Queries().GetRevision(ctx, id)
	if IsNotFoundError(err) {
		return ledger.Revision{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Revision{}, fmt.Errorf("failed to get revision: %w", err)
	}

	rev, err := rowToRevision(row)
	if err != nil {
		return ledger.Revision{}, fmt.Errorf("failed to convert revision: %w", err)
	}

	return rev, nil
}

// Revisions returns all current revisions ordered by document id.
func (s *LedgerStore) Revisions(ctx context.Context) ([]ledger.Revision, error) {
	rows, err := s.db.Queries().ListRevisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	revisions := make([]ledger.Revision, 0, len(rows))
	for _, row := range rows {
		rev, err := rowToRevision(row)
		if err != nil {
			return nil, fmt.Errorf("failed to convert revision: %w", err)
		}
		revisions = append(revisions, rev)
	}

	return revisions, nil
}

// DocChannels returns the channels a document was last routed to.
func (s *LedgerStore) DocChannels(ctx context.Context, docID string) ([]string, error) {
	channels, err := s.db.Queries().ListDocChannels(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doc channels: %w", err)
	}
	return channels, nil
}

// AllDocChannels returns every channel with its member document ids.
func (s *LedgerStore) AllDocChannels(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.Queries().ListAllDocChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doc channels: %w", err)
	}

	out := make(map[string][]string)
	for _, row := range rows {
		out[row.Channel] = append(out[row.Channel], row.DocID)
	}
	return out, nil
}

// ChannelsForUser returns the exact channels granted to a user by accepted writes.
func (s *LedgerStore) ChannelsForUser(ctx context.Context, user string) ([]string, error) {
	channels, err := s.db.Queries().ListChannelsForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for user: %w", err)
	}
	return channels, nil
}

// RolesForUser returns the roles assigned to a user by accepted writes.
func (s *LedgerStore) RolesForUser(ctx context.Context, user string) ([]string, error) {
	roles, err := s.db.Queries().ListRolesForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles for user: %w", err)
	}
	return roles, nil
}

// ChannelGrants returns every accumulated channel grant.
func (s *LedgerStore) ChannelGrants(ctx context.Context) ([]ledger.ChannelGrant, error) {
	rows, err := s.db.Queries().ListChannelGrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel grants: %w", err)
	}

	grants := make([]ledger.ChannelGrant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, ledger.ChannelGrant{
			User:      row.Username,
			Channel:   row.Channel,
			GrantedBy: row.GrantedBy,
			CreatedAt: time.Unix(0, row.CreatedAt),
		})
	}
	return grants, nil
}

// RoleGrants returns every accumulated role assignment.
func (s *LedgerStore) RoleGrants(ctx context.Context) ([]ledger.RoleGrant, error) {
	rows, err := s.db.Queries().ListRoleGrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}

	grants := make([]ledger.RoleGrant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, ledger.RoleGrant{
			User:      row.Username,
			Role:      row.Role,
			GrantedBy: row.GrantedBy,
			CreatedAt: time.Unix(0, row.CreatedAt),
		})
	}
	return grants, nil
}

// ApplyWrite persists an accepted write in a single transaction: the new
// revision, its re-declared channel memberships, and any grants or role
// assignments it established.
func (s *LedgerStore) ApplyWrite(ctx context.Context, w ledger.AcceptedWrite) error {
	body, err := json.Marshal(w.Revision.Doc)
	if err != nil {
		return fmt.Errorf("failed to marshal revision body: %w", err)
	}

	return s.db.WithTx(ctx, func(q *db.Queries) error {
		err := q.SaveRevision(ctx, db.SaveRevisionParams{
			ID:        w.Revision.ID,
			Rev:       w.Revision.Rev,
			Type:      w.Revision.Type,
			Deleted:   w.Revision.Deleted,
			Body:      body,
			UpdatedAt: w.Revision.UpdatedAt.UnixNano(),
		})
		if err != nil {
			return fmt.Errorf("failed to save revision: %w", err)
		}

		// Channel membership is declared fresh on every accepted write,
		// but tombstones keep their prior routing (deletes do not re-route).
		if !w.Revision.Deleted {
			if err := q.DeleteDocChannels(ctx, w.Revision.ID); err != nil {
				return fmt.Errorf("failed to clear doc channels: %w", err)
			}
			for _, channel := range w.Channels {
				if err := q.AddDocChannel(ctx, w.Revision.ID, channel); err != nil {
					return fmt.Errorf("failed to add doc channel: %w", err)
				}
			}
		}

		for _, g := range w.Grants {
			err := q.AddChannelGrant(ctx, db.AddChannelGrantParams{
				Username:  g.User,
				Channel:   g.Channel,
				GrantedBy: g.GrantedBy,
				CreatedAt: g.CreatedAt.UnixNano(),
			})
			if err != nil {
				return fmt.Errorf("failed to add channel grant: %w", err)
			}
		}

		for _, r := range w.Roles {
			err := q.AddRoleGrant(ctx, db.AddRoleGrantParams{
				Username:  r.User,
				Role:      r.Role,
				GrantedBy: r.GrantedBy,
				CreatedAt: r.CreatedAt.UnixNano(),
			})
			if err != nil {
				return fmt.Errorf("failed to add role grant: %w", err)
			}
		}

		return nil
	})
}

func rowToRevision(row db.RevisionRow) (ledger.Revision, error) {
	var doc policy.Document
	if err := json.Unmarshal(row.Body, &doc); err != nil {
		return ledger.Revision{}, fmt.Errorf("unmarshal body: %w", err)
	}

	return ledger.Revision{
		ID:        row.ID,
		Rev:       row.Rev,
		Type:      row.Type,
		Deleted:   row.Deleted,
		Doc:       &doc,
		UpdatedAt: time.Unix(0, row.UpdatedAt),
	}, nil
}

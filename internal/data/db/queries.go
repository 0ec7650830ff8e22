package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries run inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles the ledger's SQL statements behind typed methods.
type Queries struct {
	db DBTX
}

// New creates a Queries instance over the given connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// RevisionRow is the persisted form of a document revision.
type RevisionRow struct {
	ID        string
	Rev       int64
	Type      string
	Deleted   bool
	Body      []byte
	UpdatedAt int64
}

// GetRevision returns the current revision of a document.
func (q *Queries) GetRevision(ctx context.Context, id string) (RevisionRow, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, rev, type, deleted, body, updated_at FROM revisions WHERE id = ?`, id)

	var r RevisionRow
	err := row.Scan(&r.ID, &r.Rev, &r.Type, &r.Deleted, &r.Body, &r.UpdatedAt)
	return r, err
}

// SaveRevisionParams holds the columns written by SaveRevision.
type SaveRevisionParams struct {
	ID        string
	Rev       int64
	Type      string
	Deleted   bool
	Body      []byte
	UpdatedAt int64
}

// SaveRevision inserts or replaces the current revision of a document.
func (q *Queries) SaveRevision(ctx context.Context, p SaveRevisionParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO revisions (id, rev, type, deleted, body, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   rev = excluded.rev,
		   type = excluded.type,
		   deleted = excluded.deleted,
		   body = excluded.body,
		   updated_at = excluded.updated_at`,
		p.ID, p.Rev, p.Type, p.Deleted, p.Body, p.UpdatedAt)
	return err
}

// ListRevisions returns all revisions ordered by id.
func (q *Queries) ListRevisions(ctx context.Context) ([]RevisionRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, rev, type, deleted, body, updated_at FROM revisions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RevisionRow
	for rows.Next() {
		var r RevisionRow
		if err := rows.Scan(&r.ID, &r.Rev, &r.Type, &r.Deleted, &r.Body, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteDocChannels removes all channel memberships of a document.
func (q *Queries) DeleteDocChannels(ctx context.Context, docID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM doc_channels WHERE doc_id = ?`, docID)
	return err
}

// AddDocChannel records a document's membership in a channel.
func (q *Queries) AddDocChannel(ctx context.Context, docID, channel string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO doc_channels (doc_id, channel) VALUES (?, ?)`, docID, channel)
	return err
}

// ListDocChannels returns the channels a document was last routed to.
func (q *Queries) ListDocChannels(ctx context.Context, docID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT channel FROM doc_channels WHERE doc_id = ? ORDER BY channel`, docID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DocChannelRow pairs a document with one of its channels.
type DocChannelRow struct {
	DocID   string
	Channel string
}

// ListAllDocChannels returns every (document, channel) membership.
func (q *Queries) ListAllDocChannels(ctx context.Context) ([]DocChannelRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT doc_id, channel FROM doc_channels ORDER BY channel, doc_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []DocChannelRow
	for rows.Next() {
		var r DocChannelRow
		if err := rows.Scan(&r.DocID, &r.Channel); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddChannelGrantParams holds the columns written by AddChannelGrant.
type AddChannelGrantParams struct {
	Username  string
	Channel   string
	GrantedBy string
	CreatedAt int64
}

// AddChannelGrant records read access to a channel. Re-granting is a no-op,
// so replays of accepted writes stay idempotent.
func (q *Queries) AddChannelGrant(ctx context.Context, p AddChannelGrantParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO channel_grants (username, channel, granted_by, created_at)
		 VALUES (?, ?, ?, ?)`,
		p.Username, p.Channel, p.GrantedBy, p.CreatedAt)
	return err
}

// ListChannelsForUser returns the channels a user has been granted.
func (q *Queries) ListChannelsForUser(ctx context.Context, username string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT channel FROM channel_grants WHERE username = ? ORDER BY channel`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChannelGrantRow is one accumulated channel grant.
type ChannelGrantRow struct {
	Username  string
	Channel   string
	GrantedBy string
	CreatedAt int64
}

// ListChannelGrants returns every accumulated channel grant.
func (q *Queries) ListChannelGrants(ctx context.Context) ([]ChannelGrantRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT username, channel, granted_by, created_at FROM channel_grants
		 ORDER BY username, channel`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ChannelGrantRow
	for rows.Next() {
		var r ChannelGrantRow
		if err := rows.Scan(&r.Username, &r.Channel, &r.GrantedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddRoleGrantParams holds the columns written by AddRoleGrant.
type AddRoleGrantParams struct {
	Username  string
	Role      string
	GrantedBy string
	CreatedAt int64
}

// AddRoleGrant records a role assignment. Re-assigning is a no-op.
func (q *Queries) AddRoleGrant(ctx context.Context, p AddRoleGrantParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO role_grants (username, role, granted_by, created_at)
		 VALUES (?, ?, ?, ?)`,
		p.Username, p.Role, p.GrantedBy, p.CreatedAt)
	return err
}

// ListRolesForUser returns the roles a user has been assigned.
func (q *Queries) ListRolesForUser(ctx context.Context, username string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT role FROM role_grants WHERE username = ? ORDER BY role`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RoleGrantRow is one accumulated role assignment.
type RoleGrantRow struct {
	Username  string
	Role      string
	GrantedBy string
	CreatedAt int64
}

// ListRoleGrants returns every accumulated role assignment.
func (q *Queries) ListRoleGrants(ctx context.Context) ([]RoleGrantRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT username, role, granted_by, created_at FROM role_grants
		 ORDER BY username, role`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RoleGrantRow
	for rows.Next() {
		var r RoleGrantRow
		if err := rows.Scan(&r.Username, &r.Role, &r.GrantedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

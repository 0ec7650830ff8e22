package gateway

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/writegate/internal/core/config"
	"github.com/colonyops/writegate/internal/core/policy"
	"github.com/colonyops/writegate/internal/data/db"
	"github.com/colonyops/writegate/internal/data/stores"
)

func newTestService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })

	if cfg == nil {
		c := config.DefaultConfig()
		cfg = &c
	}

	engine := policy.NewEngine(zerolog.Nop())
	return NewService(engine, stores.NewLedgerStore(database), cfg, zerolog.Nop())
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Users = map[string]config.User{
		"root": {Roles: []string{config.RoleAdmin}},
	}
	return &cfg
}

func TestPropose_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testConfig())

	// root installs mia as moderator; the role lands in the ledger.
	modDoc := &policy.Document{ID: "moderator:mia", Type: policy.DocTypeModerator, Username: "mia"}
	res, err := svc.Propose(ctx, "root", modDoc)
	require.NoError(t, err)
	assert.Equal(t, []policy.RoleAssignment{{User: "mia", Role: policy.RoleModerator}}, res.Roles)

	// alice creates her list; she is granted its channels.
	list := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Groceries", Owner: "alice"}
	_, err = svc.Propose(ctx, "alice", list)
	require.NoError(t, err)

	// bob cannot write a task yet: he owns nothing and reads nothing.
	task := &policy.Document{
		ID:       "task-0001",
		Type:     policy.DocTypeTask,
		TaskList: &policy.TaskListRef{ID: "alice:groceries", Owner: "alice"},
		Task:     "buy milk",
	}
	_, err = svc.Propose(ctx, "bob", task)
	require.Error(t, err)
	assert.True(t, policy.IsUnauthorized(err))

	// alice shares the list with bob; the membership write grants bob the
	// list channel through the ledger.
	member := &policy.Document{
		ID:       "alice:groceries:bob",
		Type:     policy.DocTypeTaskListUser,
		TaskList: &policy.TaskListRef{ID: "alice:groceries", Owner: "alice"},
		Username: "bob",
	}
	_, err = svc.Propose(ctx, "alice", member)
	require.NoError(t, err)

	// Now bob's effective read set includes the list channel.
	_, err = svc.Propose(ctx, "bob", task)
	require.NoError(t, err)

	// bob still cannot delete the list.
	tomb := &policy.Document{ID: "alice:groceries", Deleted: true}
	_, err = svc.Propose(ctx, "bob", tomb)
	require.Error(t, err)
	assert.True(t, policy.IsUnauthorized(err))

	// mia can: her moderator role was assigned by the ledger, not config.
	res, err = svc.Propose(ctx, "mia", tomb)
	require.NoError(t, err)
	assert.Empty(t, res.Channels, "delete declares nothing")

	// The lifecycle ends at the tombstone.
	_, err = svc.Propose(ctx, "alice", list)
	assert.ErrorIs(t, err, ErrDocumentDeleted)
}

func TestPropose_RevisionsIncrement(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testConfig())

	list := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Groceries", Owner: "alice"}
	_, err := svc.Propose(ctx, "alice", list)
	require.NoError(t, err)

	renamed := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Weekly", Owner: "alice"}
	_, err = svc.Propose(ctx, "alice", renamed)
	require.NoError(t, err)

	rev, err := svc.ledger.Revision(ctx, "alice:groceries")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev.Rev)
	assert.Equal(t, "Weekly", rev.Doc.Name)
}

func TestPropose_RejectionLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testConfig())

	// bob tries to create alice's list: rejected, nothing persisted.
	list := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Groceries", Owner: "alice"}
	_, err := svc.Propose(ctx, "bob", list)
	require.Error(t, err)

	_, err = svc.ledger.Revision(ctx, "alice:groceries")
	assert.Error(t, err, "no revision persisted for a rejected write")

	channels, err := svc.ledger.ChannelsForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, channels, "no grants persisted for a rejected write")
}

func TestPrincipal_ConfigPatterns(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig()
	cfg.Users["carol"] = config.User{Channels: []string{"task-list:alice:*"}}
	svc := newTestService(t, cfg)

	p, err := svc.Principal(ctx, "carol")
	require.NoError(t, err)

	assert.True(t, p.CanRead("task-list:alice:groceries"))
	assert.True(t, p.CanRead("task-list:alice:chores"))
	assert.False(t, p.CanRead("task-list:bob:groceries"))
	assert.False(t, p.HasRole(policy.RoleModerator))
}

func TestPrincipal_UnknownUserIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	p, err := svc.Principal(ctx, "stranger")
	require.NoError(t, err)

	assert.Equal(t, "stranger", p.Name())
	assert.False(t, p.HasRole(policy.RoleAdmin))
	assert.False(t, p.CanRead("moderators"))
}

package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/writegate/internal/core/config"
	"github.com/colonyops/writegate/internal/core/policy"
	"github.com/colonyops/writegate/internal/data/db"
	"github.com/colonyops/writegate/internal/data/stores"
	"github.com/colonyops/writegate/internal/gateway"
)

func newTestLsCmd(t *testing.T) *LsCmd {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	store := stores.NewLedgerStore(database)
	engine := policy.NewEngine(zerolog.Nop())
	svc := gateway.NewService(engine, store, &cfg, zerolog.Nop())

	return NewLsCmd(&Flags{Config: &cfg}, gateway.NewApp(svc, store, &cfg))
}

func TestLsCmd_runChannels(t *testing.T) {
	ctx := context.Background()
	cmd := newTestLsCmd(t)

	list := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Groceries", Owner: "alice"}
	_, err := cmd.app.Service.Propose(ctx, "alice", list)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cmd.runChannels(ctx, &cli.Command{Writer: &buf}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "CHANNEL"), "header row first, got %q", lines[0])

	// Channel names lead each row; the member documents follow.
	var moderatorsLine string
	for _, line := range lines[1:] {
		assert.False(t, strings.HasPrefix(line, "alice:groceries "), "document id in the channel column: %q", line)
		if strings.HasPrefix(line, "moderators") {
			moderatorsLine = line
		}
	}
	require.NotEmpty(t, moderatorsLine, "moderators channel listed")
	assert.Contains(t, moderatorsLine, "alice:groceries")
}

func TestLsCmd_runRevisions(t *testing.T) {
	ctx := context.Background()
	cmd := newTestLsCmd(t)

	list := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Groceries", Owner: "alice"}
	_, err := cmd.app.Service.Propose(ctx, "alice", list)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cmd.runRevisions(ctx, &cli.Command{Writer: &buf}))

	out := buf.String()
	assert.Contains(t, out, "alice:groceries")
	assert.Contains(t, out, policy.DocTypeTaskList)
}

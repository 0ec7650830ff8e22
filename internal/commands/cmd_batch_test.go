package commands

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/writegate/internal/core/config"
	"github.com/colonyops/writegate/internal/core/policy"
	"github.com/colonyops/writegate/internal/data/db"
	"github.com/colonyops/writegate/internal/data/stores"
	"github.com/colonyops/writegate/internal/gateway"
)

func TestScenario_Validate(t *testing.T) {
	doc := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Groceries", Owner: "alice"}

	tests := []struct {
		name     string
		scenario Scenario
		wantErr  string
	}{
		{
			name:     "empty steps",
			scenario: Scenario{},
			wantErr:  "steps",
		},
		{
			name: "missing actor",
			scenario: Scenario{Steps: []ScenarioStep{
				{Doc: doc},
			}},
			wantErr: "as",
		},
		{
			name: "missing doc",
			scenario: Scenario{Steps: []ScenarioStep{
				{As: "alice"},
			}},
			wantErr: "doc",
		},
		{
			name: "missing doc id",
			scenario: Scenario{Steps: []ScenarioStep{
				{As: "alice", Doc: &policy.Document{Type: policy.DocTypeTaskList}},
			}},
			wantErr: "_id",
		},
		{
			name: "bad expect value",
			scenario: Scenario{Steps: []ScenarioStep{
				{As: "alice", Doc: doc, Expect: "maybe"},
			}},
			wantErr: "expect",
		},
		{
			name: "reason-contains on accept step",
			scenario: Scenario{Steps: []ScenarioStep{
				{As: "alice", Doc: doc, ReasonContains: "is empty"},
			}},
			wantErr: "reason-contains",
		},
		{
			name: "valid scenario",
			scenario: Scenario{Steps: []ScenarioStep{
				{As: "alice", Doc: doc},
				{As: "bob", Doc: doc, Expect: ExpectReject, ReasonContains: "required"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scenario.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err, "expected error containing %q, got nil", tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScenario_YAML(t *testing.T) {
	input := `
name: share a list
steps:
  - as: alice
    doc: {_id: "alice:groceries", type: task-list, name: Groceries, owner: alice}
  - as: bob
    doc:
      _id: t-1
      type: task
      task: buy milk
      taskList: {id: "alice:groceries", owner: alice}
    expect: reject
    reason-contains: read access
`

	var scenario Scenario
	require.NoError(t, yaml.Unmarshal([]byte(input), &scenario))
	require.NoError(t, scenario.Validate())

	assert.Equal(t, "share a list", scenario.Name)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, "alice:groceries", scenario.Steps[0].Doc.ID)
	assert.Equal(t, ExpectAccept, scenario.Steps[0].expect())
	assert.Equal(t, ExpectReject, scenario.Steps[1].expect())
	assert.Equal(t, "alice", scenario.Steps[1].Doc.TaskList.Owner)
}

func newTestBatchCmd(t *testing.T) *BatchCmd {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	store := stores.NewLedgerStore(database)
	engine := policy.NewEngine(zerolog.Nop())
	svc := gateway.NewService(engine, store, &cfg, zerolog.Nop())

	return NewBatchCmd(&Flags{Config: &cfg}, gateway.NewApp(svc, store, &cfg))
}

func TestBatchCmd_runStep(t *testing.T) {
	ctx := context.Background()
	cmd := newTestBatchCmd(t)

	list := &policy.Document{ID: "alice:groceries", Type: policy.DocTypeTaskList, Name: "Groceries", Owner: "alice"}

	// Step 1: alice creates her list, expectation met.
	res := cmd.runStep(ctx, 0, ScenarioStep{As: "alice", Doc: list})
	assert.True(t, res.Pass)
	assert.Equal(t, ExpectAccept, res.Outcome)

	// Step 2: bob cannot write into the list, rejection expected and matched.
	task := &policy.Document{
		ID:       "t-1",
		Type:     policy.DocTypeTask,
		TaskList: &policy.TaskListRef{ID: "alice:groceries", Owner: "alice"},
		Task:     "buy milk",
	}
	res = cmd.runStep(ctx, 1, ScenarioStep{As: "bob", Doc: task, Expect: ExpectReject, ReasonContains: "read access"})
	assert.True(t, res.Pass)
	assert.Equal(t, ExpectReject, res.Outcome)
	assert.Contains(t, res.Reason, "read access")

	// Step 3: expectation miss is reported, not fatal.
	res = cmd.runStep(ctx, 2, ScenarioStep{As: "bob", Doc: task, Expect: ExpectAccept})
	assert.False(t, res.Pass)
	assert.Equal(t, ExpectReject, res.Outcome)

	// Step 4: reason substring mismatch fails the step.
	res = cmd.runStep(ctx, 3, ScenarioStep{As: "bob", Doc: task, Expect: ExpectReject, ReasonContains: "no such reason"})
	assert.False(t, res.Pass)
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		doc      *Document
		oldDoc   *Document
		wantOp   Op
		wantType string
	}{
		{
			name:     "create when no prior revision",
			doc:      &Document{ID: "alice:groceries", Type: DocTypeTaskList},
			oldDoc:   nil,
			wantOp:   OpCreate,
			wantType: DocTypeTaskList,
		},
		{
			name:     "update when prior revision exists",
			doc:      &Document{ID: "alice:groceries", Type: DocTypeTaskList},
			oldDoc:   &Document{ID: "alice:groceries", Type: DocTypeTaskList},
			wantOp:   OpUpdate,
			wantType: DocTypeTaskList,
		},
		{
			name:     "delete resolves type from prior revision",
			doc:      &Document{ID: "alice:groceries", Deleted: true},
			oldDoc:   &Document{ID: "alice:groceries", Type: DocTypeTaskList},
			wantOp:   OpDelete,
			wantType: DocTypeTaskList,
		},
		{
			name:     "delete prefers prior type over tombstone type",
			doc:      &Document{ID: "alice:groceries", Type: "widget", Deleted: true},
			oldDoc:   &Document{ID: "alice:groceries", Type: DocTypeTaskList},
			wantOp:   OpDelete,
			wantType: DocTypeTaskList,
		},
		{
			name:     "delete with no prior revision keeps tombstone type",
			doc:      &Document{ID: "alice:groceries", Type: DocTypeTaskList, Deleted: true},
			oldDoc:   nil,
			wantOp:   OpDelete,
			wantType: DocTypeTaskList,
		},
		{
			name:     "tombstone is never a create",
			doc:      &Document{ID: "alice:groceries", Deleted: true},
			oldDoc:   nil,
			wantOp:   OpDelete,
			wantType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, typ := Classify(tt.doc, tt.oldDoc)
			assert.Equal(t, tt.wantOp, op)
			assert.Equal(t, tt.wantType, typ)
		})
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "update", OpUpdate.String())
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "unknown", Op(99).String())
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotEmpty(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"plain value", "groceries", false},
		{"value with spaces", "weekly groceries", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs and newlines", "\t\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := notEmpty("name", tt.value)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, "name is empty.", err.Error())
		})
	}
}

func TestReadOnly(t *testing.T) {
	assert.NoError(t, readOnly("owner", "alice", "alice"), "unchanged value passes")
	assert.NoError(t, readOnly("owner", "", ""), "empty to empty passes")

	err := readOnly("owner", "bob", "alice")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "owner is read-only.", err.Error())
}

func TestRequirePrefix(t *testing.T) {
	assert.NoError(t, requirePrefix("_id", "alice:groceries", "owner", "alice:"))

	err := requirePrefix("_id", "bob:groceries", "owner", "alice:")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "_id must be prefixed with owner.", err.Error())

	// Exact prefix match, not a substring match.
	assert.Error(t, requirePrefix("_id", "xalice:groceries", "owner", "alice:"))
}

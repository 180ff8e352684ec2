package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPermission_NormalizesTokens(t *testing.T) {
	p := NewPermission("  Read ", "WRITE", "", "  ")

	assert.Equal(t, []string{"read", "write"}, p.Actions())
}

func TestPermission_ZeroValue(t *testing.T) {
	var p Permission

	assert.True(t, p.IsEmpty())
	assert.False(t, p.AllowsRead())
	assert.Empty(t, p.Actions())
	assert.Equal(t, "", p.String())
}

func TestPermission_Merge(t *testing.T) {
	t.Run("Union", func(t *testing.T) {
		a := NewPermission("read")
		b := NewPermission("delete")

		merged := a.Merge(b)

		assert.Equal(t, []string{"delete", "read"}, merged.Actions())
		// Inputs are unchanged.
		assert.Equal(t, []string{"read"}, a.Actions())
		assert.Equal(t, []string{"delete"}, b.Actions())
	})

	t.Run("Commutative", func(t *testing.T) {
		a := NewPermission("read", "upload")
		b := NewPermission("delete", "custom_action")

		assert.True(t, a.Merge(b).Equal(b.Merge(a)))
	})

	t.Run("Idempotent", func(t *testing.T) {
		p := NewPermission("read", "write")

		assert.True(t, p.Merge(p).Equal(p))
	})

	t.Run("Associative", func(t *testing.T) {
		a := NewPermission("read")
		b := NewPermission("write")
		c := NewPermission("delete")

		assert.True(t, a.Merge(b).Merge(c).Equal(a.Merge(b.Merge(c))))
	})
}

func TestPermission_CapabilityPredicates(t *testing.T) {
	tests := []struct {
		name    string
		actions []string
		read    bool
		write   bool
		upload  bool
		del     bool
		rename  bool
		modify  bool
	}{
		{"ReadOnly", []string{"read"}, true, false, false, false, false, false},
		{"WriteImpliesEverything", []string{"write"}, true, true, true, true, true, true},
		{"UploadOnly", []string{"upload"}, true, true, true, false, false, false},
		{"DeleteOnly", []string{"delete"}, true, true, false, true, false, false},
		{"RenameOnly", []string{"rename"}, true, true, false, false, true, false},
		{"ModifyOnly", []string{"modify"}, true, true, false, false, false, true},
		{"CreateFile", []string{"create_file"}, true, true, true, false, false, false},
		{"CreateFolder", []string{"create_folder"}, true, true, false, false, false, false},
		{"CustomAction", []string{"publish"}, false, false, false, false, false, false},
		{"Empty", nil, false, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPermission(tt.actions...)

			assert.Equal(t, tt.read, p.AllowsRead(), "AllowsRead")
			assert.Equal(t, tt.write, p.AllowsWrite(), "AllowsWrite")
			assert.Equal(t, tt.upload, p.AllowsUpload(), "AllowsUpload")
			assert.Equal(t, tt.del, p.AllowsDelete(), "AllowsDelete")
			assert.Equal(t, tt.rename, p.AllowsRename(), "AllowsRename")
			assert.Equal(t, tt.modify, p.AllowsModify(), "AllowsModify")
		})
	}
}

// Write is a superset action: any permission that allows write must allow
// every finer-grained capability.
func TestPermission_WriteImpliesFinerCapabilities(t *testing.T) {
	candidates := []Permission{
		NewPermission("write"),
		NewPermission("write", "read"),
		NewPermission("w", "custom"),
		NewPermission("read", "upload", "write"),
	}

	for _, p := range candidates {
		if !p.AllowsWrite() {
			continue
		}
		assert.True(t, p.AllowsUpload(), "write must imply upload: %s", p)
		assert.True(t, p.AllowsDelete(), "write must imply delete: %s", p)
		assert.True(t, p.AllowsRename(), "write must imply rename: %s", p)
		assert.True(t, p.AllowsModify(), "write must imply modify: %s", p)
	}
}

func TestPermission_String(t *testing.T) {
	p := NewPermission("write", "read", "delete")

	assert.Equal(t, "delete, read, write", p.String())
}

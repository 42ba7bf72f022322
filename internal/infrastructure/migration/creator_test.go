package migration

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates matching up and down files", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "Add Snapshot Index")
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
		assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

		upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
		downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
		assert.Equal(t, upBase, downBase)
		assert.Contains(t, upBase, "add_snapshot_index")

		listed, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{upBase}, listed)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "AddWallets", "addwallets"},
		{"spaces to underscores", "add daily snapshots", "add_daily_snapshots"},
		{"collapses separators", "add -- index", "add_index"},
		{"drops other characters", "fix(#12) totals!", "fix12_totals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory lists nothing", func(t *testing.T) {
		listed, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}

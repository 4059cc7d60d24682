package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/agromart/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrations_Embedded(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.Len(t, list, 5)

	names := make([]string, len(list))
	for i, m := range list {
		assert.Equal(t, uint(i+1), m.Version)
		assert.True(t, m.HasDown, "migration %d has no down file", m.Version)
		names[i] = m.Name
	}
	assert.Equal(t, []string{
		"create_users",
		"create_products",
		"create_orders",
		"create_posts",
		"create_addresses",
	}, names)
}

func TestListMigrations_IgnoresOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_b.up.sql":   {},
		"000001_a.up.sql":   {},
		"000001_a.down.sql": {},
		"README.md":         {},
		"embed.go":          {},
	}
	list, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: 1, Name: "a", HasDown: true},
		{Version: 2, Name: "b"},
	}, list)
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	base, err := CreateMigration(dir, "Create Orders")
	require.NoError(t, err)
	assert.Equal(t, "000001_create_orders", base)

	base, err = CreateMigration(dir, "add  order-notes!")
	require.NoError(t, err)
	assert.Equal(t, "000002_add_order_notes", base)

	for _, f := range []string{"000002_add_order_notes.up.sql", "000002_add_order_notes.down.sql"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err)
	}

	_, err = CreateMigration(dir, "!!!")
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"Create Users":   "create_users",
		"  add__index  ": "add_index",
		"orders-v2":      "orders_v2",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Users-Table", "add_users_table"},
		{"ADD_USERS_TABLE", "add_users_table"},
		{"add__users__table", "add_users_table"},
		{"create cart lines 2", "create_cart_lines_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add users", "Customer accounts")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_users.up.sql"), first.UpPath)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- Migration: add users")
	assert.Contains(t, string(content), "-- Customer accounts")

	_, err = os.Stat(first.DownPath)
	require.NoError(t, err)

	second, err := CreateMigration(dir, "add carts", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sql")

	mf, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000010_tenth.up.sql":    {},
		"sql/000010_tenth.down.sql":  {},
		"sql/000002_second.up.sql":   {},
		"sql/000002_second.down.sql": {},
		"sql/README.md":              {},
		"sql/nested/000003_x.up.sql": {},
	}

	migrations, err := ListMigrations(fsys, "sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"000002_second", "000010_tenth"}, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(fstest.MapFS{}, "missing")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := ListMigrations(Embedded(), EmbeddedDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_users",
		"000002_create_carts",
		"000003_create_orders",
		"000004_create_session_tables",
	}, migrations)

	for _, m := range migrations {
		_, err := Embedded().ReadFile(EmbeddedDir + "/" + m + ".down.sql")
		assert.NoError(t, err, m)
	}
}

package db

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLazyDB(t *testing.T) *sql.DB {
	t.Helper()
	// sql.Open does not dial; the migrator only needs a handle to build.
	sqlDB, err := sql.Open("pgx", "postgres://kindred@127.0.0.1:1/kindred")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestMigratorOrdersSourcesByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_audit.sql": {Data: []byte("-- +goose Up\nCREATE TABLE b ();\n")},
		"0001_init.sql":  {Data: []byte("-- +goose Up\nCREATE TABLE a ();\n")},
		"README.md":      {Data: []byte("ignored")},
	}
	provider, err := NewMigrator(openLazyDB(t), fsys)
	require.NoError(t, err)

	sources := provider.ListSources()
	require.Len(t, sources, 2)
	assert.Equal(t, int64(1), sources[0].Version)
	assert.Equal(t, "0001_init.sql", sources[0].Path)
	assert.Equal(t, goose.TypeSQL, sources[0].Type)
	assert.Equal(t, int64(2), sources[1].Version)
}

func TestMigratorRejectsEmptyFS(t *testing.T) {
	_, err := NewMigrator(openLazyDB(t), fstest.MapFS{})
	assert.Error(t, err)
}

package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateSQLite(t *testing.T) {
	db, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db, DialectSQLite))
	// Second run is a no-op.
	require.NoError(t, Migrate(db, DialectSQLite))

	for _, table := range []string{"users", "portals"} {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		require.Equal(t, 1, n, "table %s", table)
	}
}

func TestMigrateUnknownDialect(t *testing.T) {
	db, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.Error(t, Migrate(db, "postgres"))
}

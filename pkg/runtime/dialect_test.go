package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	pg, err := DialectFor(DriverPostgres)
	require.NoError(t, err)
	lite, err := DialectFor(DriverSQLite)
	require.NoError(t, err)

	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{
			name:    "postgres numbers placeholders",
			dialect: pg,
			query:   "SELECT a FROM t WHERE x = ? AND y >= ? AND y <= ?",
			want:    "SELECT a FROM t WHERE x = $1 AND y >= $2 AND y <= $3",
		},
		{
			name:    "postgres skips quoted marks",
			dialect: pg,
			query:   "SELECT '?' FROM t WHERE x = ?",
			want:    "SELECT '?' FROM t WHERE x = $1",
		},
		{
			name:    "postgres without placeholders",
			dialect: pg,
			query:   "SELECT 1",
			want:    "SELECT 1",
		},
		{
			name:    "sqlite keeps question marks",
			dialect: lite,
			query:   "SELECT a FROM t WHERE x = ?",
			want:    "SELECT a FROM t WHERE x = ?",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.dialect.Rebind(tt.query))
		})
	}
}

func TestDialectFor_Unknown(t *testing.T) {
	t.Parallel()

	_, err := DialectFor("oracle")
	require.Error(t, err)

	pgx, err := DialectFor(DriverPgx)
	require.NoError(t, err)
	require.Equal(t, "SELECT $1", pgx.Rebind("SELECT ?"))
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		want   string
		memory bool
	}{
		{
			name: "file path",
			path: "/tmp/w.db",
			want: "file:/tmp/w.db?" + sqlitePragmas,
		},
		{
			name:   "memory",
			path:   ":memory:",
			want:   "file::memory:?cache=shared&" + sqlitePragmas,
			memory: true,
		},
		{
			name:   "named memory",
			path:   "file:w?mode=memory",
			want:   "file:w?mode=memory&cache=shared",
			memory: true,
		},
		{
			name:   "memory with cache set",
			path:   "file::memory:?cache=private",
			want:   "file::memory:?cache=private",
			memory: true,
		},
		{
			name: "file dsn",
			path: "file:/tmp/w.db?_pragma=foreign_keys(1)",
			want: "file:/tmp/w.db?_pragma=foreign_keys(1)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SQLiteDSN(tt.path))
			require.Equal(t, tt.memory, SQLiteInMemory(tt.path))
		})
	}
}

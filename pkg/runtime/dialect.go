package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver names accepted by Connect.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Dialect describes how statements must be shaped for a driver.
type Dialect struct {
	Name         string
	dollarParams bool
}

// DialectFor returns the dialect of a registered driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPostgres, DriverPgx:
		return Dialect{Name: driver, dollarParams: true}, nil
	case DriverSQLite:
		return Dialect{Name: driver}, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Rebind rewrites ? placeholders into the driver's style. Question marks
// inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.dollarParams || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"

// SQLiteDSN builds a modernc sqlite DSN for a database file. Times are
// written in SQLite's own format so stored values and bound parameters
// compare consistently. In-memory databases use a shared cache so every
// pooled connection sees the same schema and rows.
func SQLiteDSN(path string) string {
	switch {
	case path == ":memory:":
		return "file::memory:?cache=shared&" + sqlitePragmas
	case strings.HasPrefix(path, "file:"):
		if SQLiteInMemory(path) && !strings.Contains(path, "cache=") {
			if strings.Contains(path, "?") {
				return path + "&cache=shared"
			}
			return path + "?cache=shared"
		}
		return path
	}
	return "file:" + path + "?" + sqlitePragmas
}

// SQLiteInMemory reports whether dsn names an in-memory sqlite database.
func SQLiteInMemory(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory")
}

package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/TechXTT/workhours/pkg/runtime"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var embedded embed.FS

// Schema returns the migrations that create the working_log and
// employee_rates tables.
func Schema() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

var fileRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// Migration holds one versioned migration
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Manager applies and rolls back migrations. Each step runs in its own
// unit of work on a connection from the provider.
type Manager struct {
	provider   runtime.Provider
	migrations []Migration
	log        zerolog.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager loads NNNN_name.up.sql / NNNN_name.down.sql files from fsys.
func NewManager(provider runtime.Provider, fsys fs.FS, opts ...Option) (*Manager, error) {
	m := &Manager{provider: provider, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	migrations, err := load(fsys)
	if err != nil {
		return nil, err
	}
	m.migrations = migrations
	return m, nil
}

// Migrations lists the loaded migrations in version order.
func (m *Manager) Migrations() []Migration {
	return append([]Migration(nil), m.migrations...)
}

func load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	tmp := map[int]*Migration{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		matches := fileRe.FindStringSubmatch(e.Name())
		if len(matches) != 4 {
			continue
		}
		ver, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("parse version of %s: %w", e.Name(), err)
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		mig, exists := tmp[ver]
		if !exists {
			mig = &Migration{Version: ver, Name: matches[2]}
			tmp[ver] = mig
		} else if mig.Name != matches[2] {
			return nil, fmt.Errorf("version %d used by %q and %q", ver, mig.Name, matches[2])
		}
		if matches[3] == "up" {
			mig.UpSQL = string(data)
		} else {
			mig.DownSQL = string(data)
		}
	}

	versions := make([]int, 0, len(tmp))
	for v := range tmp {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	result := make([]Migration, 0, len(versions))
	for _, v := range versions {
		result = append(result, *tmp[v])
	}
	return result, nil
}

const (
	createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`
	selectVersion      = `SELECT MAX(version) FROM schema_migrations`
	insertVersion      = `INSERT INTO schema_migrations (version) VALUES (?)`
	deleteVersion      = `DELETE FROM schema_migrations WHERE version = ?`
)

// EnsureVersionTable creates schema_migrations if missing
func (m *Manager) EnsureVersionTable(ctx context.Context) error {
	return runtime.Scope(ctx, m.provider, func(ctx context.Context, conn runtime.Conn) error {
		return conn.Exec(ctx, createVersionTable)
	})
}

// Version returns the highest applied migration version, 0 when none.
func (m *Manager) Version(ctx context.Context) (int, error) {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	err := runtime.Scope(ctx, m.provider, func(ctx context.Context, conn runtime.Conn) error {
		_, err := conn.QueryRow(ctx, selectVersion).FetchOne(&v)
		return err
	})
	if err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// Up applies all pending migrations
func (m *Manager) Up(ctx context.Context) error {
	current, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("current version: %w", err)
	}

	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("applying migration")
		err := runtime.Scope(ctx, m.provider, func(ctx context.Context, conn runtime.Conn) error {
			if err := conn.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("apply up %d: %w", mig.Version, err)
			}
			if err := conn.Exec(ctx, insertVersion, mig.Version); err != nil {
				return fmt.Errorf("record version %d: %w", mig.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Down rolls back the latest migration
func (m *Manager) Down(ctx context.Context) error {
	current, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("current version: %w", err)
	}
	if current == 0 {
		m.log.Info().Msg("no migrations to roll back")
		return nil
	}
	mig, ok := m.find(current)
	if !ok {
		return fmt.Errorf("migration not found for version %d", current)
	}
	return m.down(ctx, mig)
}

// Reset rolls back every applied migration, newest first, then reapplies all.
func (m *Manager) Reset(ctx context.Context) error {
	current, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("current version: %w", err)
	}
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > current {
			continue
		}
		if err := m.down(ctx, mig); err != nil {
			return err
		}
	}
	return m.Up(ctx)
}

// Status describes the current version and whether each migration is applied.
func (m *Manager) Status(ctx context.Context) (string, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("current version: %w", err)
	}
	lines := []string{fmt.Sprintf("Current version: %d", current)}
	for _, mig := range m.migrations {
		state := "pending"
		if mig.Version <= current {
			state = "applied"
		}
		lines = append(lines, fmt.Sprintf("%04d_%s: %s", mig.Version, mig.Name, state))
	}
	return strings.Join(lines, "\n"), nil
}

func (m *Manager) down(ctx context.Context, mig Migration) error {
	m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("rolling back migration")
	return runtime.Scope(ctx, m.provider, func(ctx context.Context, conn runtime.Conn) error {
		if err := conn.Exec(ctx, mig.DownSQL); err != nil {
			return fmt.Errorf("apply down %d: %w", mig.Version, err)
		}
		if err := conn.Exec(ctx, deleteVersion, mig.Version); err != nil {
			return fmt.Errorf("delete version %d: %w", mig.Version, err)
		}
		return nil
	})
}

func (m *Manager) find(version int) (Migration, bool) {
	for i := len(m.migrations) - 1; i >= 0; i-- {
		if m.migrations[i].Version == version {
			return m.migrations[i], true
		}
	}
	return Migration{}, false
}

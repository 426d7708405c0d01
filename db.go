// Package workhours wires configuration, the connection pool, schema
// migrations and the hour-tracking managers together.
package workhours

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TechXTT/workhours/pkg/config"
	"github.com/TechXTT/workhours/pkg/hours"
	"github.com/TechXTT/workhours/pkg/migrate"
	"github.com/TechXTT/workhours/pkg/runtime"
	"github.com/rs/zerolog"
)

// DB owns the pool and hands out managers bound to it.
type DB struct {
	Conn     *sql.DB
	provider *runtime.DBProvider
	scope    hours.Scope
	log      zerolog.Logger
}

// Open connects using cfg and, when cfg.Database.AutoMigrate is set, brings
// the schema up to date.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*DB, error) {
	scope, err := hours.ParseScope(cfg.Manager.Scope)
	if err != nil {
		return nil, err
	}

	opts := cfg.Database.ConnectOptions()
	opts.Logger = log.With().Str("component", "pgx").Logger()
	conn, dialect, err := runtime.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := NewDB(conn, dialect, log,
		runtime.WithQueryTimeout(cfg.Database.QueryTimeout),
	)
	db.scope = scope

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}
	log.Debug().Str("driver", dialect.Name).Str("scope", scope.String()).Msg("database ready")
	return db, nil
}

// NewDB wraps an already opened pool.
func NewDB(conn *sql.DB, dialect runtime.Dialect, log zerolog.Logger, opts ...runtime.ProviderOption) *DB {
	opts = append([]runtime.ProviderOption{runtime.WithLogger(log)}, opts...)
	return &DB{
		Conn:     conn,
		provider: runtime.NewProvider(conn, dialect, opts...),
		log:      log,
	}
}

// Provider exposes the connection provider backing managers.
func (db *DB) Provider() runtime.Provider { return db.provider }

// Migrator returns a migration manager over the embedded schema.
func (db *DB) Migrator() (*migrate.Manager, error) {
	return migrate.NewManager(db.provider, migrate.Schema(),
		migrate.WithLogger(db.log.With().Str("component", "migrate").Logger()))
}

// Migrate applies pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	m, err := db.Migrator()
	if err != nil {
		return err
	}
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Manager returns an hour-tracking manager for employeeID using the
// configured scope unless opts override it.
func (db *DB) Manager(ctx context.Context, employeeID int64, opts ...hours.Option) (*hours.Manager, error) {
	opts = append([]hours.Option{hours.WithScope(db.scope), hours.WithLogger(db.log)}, opts...)
	return hours.NewManager(ctx, db.provider, employeeID, opts...)
}

// Rates returns the store of hourly rates.
func (db *DB) Rates() *hours.RateStore {
	return hours.NewRateStore(db.provider, db.log)
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.Conn.Close()
}

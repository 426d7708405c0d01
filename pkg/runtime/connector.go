package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/TechXTT/workhours/pkg/errs"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// PingTimeout bounds the reachability check done by Connect.
const PingTimeout = 10 * time.Second

// ConnectOptions configures the pool behind a provider.
type ConnectOptions struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// Logger receives pgx statement traces at debug level.
	Logger zerolog.Logger
}

// Connect opens and pings a pool for the configured driver.
func Connect(ctx context.Context, opts ConnectOptions) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	// If the DSN is empty, throw an error.
	if opts.DSN == "" {
		return nil, Dialect{}, fmt.Errorf("DSN is empty")
	}

	var db *sql.DB
	switch opts.Driver {
	case DriverPgx:
		cfg, err := pgx.ParseConfig(opts.DSN)
		if err != nil {
			return nil, Dialect{}, fmt.Errorf("failed to parse pgx config: %w", err)
		}
		cfg.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(opts.Logger),
			LogLevel: tracelog.LogLevelDebug,
		}
		db = stdlib.OpenDB(*cfg)
	default:
		db, err = sql.Open(opts.Driver, opts.DSN)
		if err != nil {
			return nil, Dialect{}, fmt.Errorf("failed to open database: %w", err)
		}
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	// A shared in-memory database lives only while a connection holds it.
	if opts.Driver == DriverSQLite && SQLiteInMemory(opts.DSN) {
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		if opts.MaxIdleConns <= 0 {
			db.SetMaxIdleConns(2)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, Dialect{}, &errs.ConnectionError{Driver: opts.Driver, Err: err}
	}
	return db, dialect, nil
}

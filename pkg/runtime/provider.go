package runtime

import (
	"context"
	"database/sql"
	"time"

	"github.com/TechXTT/workhours/pkg/errs"
	"github.com/rs/zerolog"
)

// Provider hands out a fresh connection per call.
type Provider interface {
	Open(ctx context.Context) (Conn, error)
}

// DBProvider checks dedicated connections out of a *sql.DB pool.
type DBProvider struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
	log     zerolog.Logger
}

// ProviderOption customizes a DBProvider.
type ProviderOption func(*DBProvider)

// WithQueryTimeout bounds every statement run through provided connections.
func WithQueryTimeout(d time.Duration) ProviderOption {
	return func(p *DBProvider) { p.timeout = d }
}

// WithLogger sets the logger used by provided connections.
func WithLogger(l zerolog.Logger) ProviderOption {
	return func(p *DBProvider) { p.log = l }
}

func NewProvider(db *sql.DB, dialect Dialect, opts ...ProviderOption) *DBProvider {
	p := &DBProvider{db: db, dialect: dialect, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open reserves a connection from the pool. Failures are reported as
// *errs.ConnectionError.
func (p *DBProvider) Open(ctx context.Context) (Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		p.log.Error().Err(err).Str("driver", p.dialect.Name).Msg("failed to acquire connection")
		return nil, &errs.ConnectionError{Driver: p.dialect.Name, Err: err}
	}
	return newSQLConn(conn, p.dialect, p.timeout, p.log), nil
}

// DB exposes the underlying pool.
func (p *DBProvider) DB() *sql.DB { return p.db }

func (p *DBProvider) Dialect() Dialect { return p.dialect }

// Close closes the pool.
func (p *DBProvider) Close() error { return p.db.Close() }

package runtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TechXTT/workhours/pkg/errs"
	"github.com/rs/zerolog"
)

// ErrConnClosed is returned by a Conn used after Close.
var ErrConnClosed = errors.New("connection is closed")

// Conn is a single database connection owned by one unit of work.
type Conn interface {
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...any) error
	// QueryRow runs a statement expected to produce at most one row.
	QueryRow(ctx context.Context, query string, args ...any) Result
	// Commit ends the pending transaction, if any.
	Commit() error
	// Rollback discards the pending transaction, if any.
	Rollback() error
	// Close rolls back pending work and releases the connection. Safe to
	// call more than once.
	Close() error
}

// Result yields the single row produced by QueryRow.
type Result interface {
	// FetchOne scans the row into dest. It reports false with a nil error
	// when the statement matched nothing.
	FetchOne(dest ...any) (bool, error)
}

// sqlConn adapts a dedicated *sql.Conn. A transaction is begun by the first
// statement and ended by Commit, Rollback or Close.
type sqlConn struct {
	conn    *sql.Conn
	dialect Dialect
	timeout time.Duration
	log     zerolog.Logger

	tx     *sql.Tx
	closed bool
}

func newSQLConn(conn *sql.Conn, dialect Dialect, timeout time.Duration, log zerolog.Logger) *sqlConn {
	return &sqlConn{conn: conn, dialect: dialect, timeout: timeout, log: log}
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...any) error {
	if c.closed {
		return ErrConnClosed
	}
	tx, err := c.begin(ctx)
	if err != nil {
		return errs.NewQueryError(query, err)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	_, err = tx.ExecContext(ctx, c.dialect.Rebind(query), args...)
	return errs.NewQueryError(query, deadline(ctx, err))
}

func (c *sqlConn) QueryRow(ctx context.Context, query string, args ...any) Result {
	if c.closed {
		return &row{err: ErrConnClosed}
	}
	tx, err := c.begin(ctx)
	if err != nil {
		return &row{query: query, err: err}
	}
	ctx, cancel := c.withTimeout(ctx)
	return &row{
		ctx:    ctx,
		query:  query,
		row:    tx.QueryRowContext(ctx, c.dialect.Rebind(query), args...),
		cancel: cancel,
	}
}

func (c *sqlConn) Commit() error {
	if c.closed {
		return ErrConnClosed
	}
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	return errs.NewQueryError("COMMIT", tx.Commit())
}

func (c *sqlConn) Rollback() error {
	if c.closed || c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errs.NewQueryError("ROLLBACK", err)
	}
	return nil
}

func (c *sqlConn) Close() error {
	if c.closed {
		return nil
	}
	if err := c.Rollback(); err != nil {
		c.log.Warn().Err(err).Msg("rollback on close failed")
	}
	c.closed = true
	return c.conn.Close()
}

// begin starts the transaction lazily. The transaction must outlive the
// per-statement deadline, so it is bound to a context without cancellation.
func (c *sqlConn) begin(ctx context.Context) (*sql.Tx, error) {
	if c.tx != nil {
		return c.tx, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := c.conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, err
	}
	c.tx = tx
	return tx, nil
}

func (c *sqlConn) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

type row struct {
	ctx    context.Context
	query  string
	row    *sql.Row
	cancel context.CancelFunc
	err    error
}

func (r *row) FetchOne(dest ...any) (bool, error) {
	if r.cancel != nil {
		defer r.cancel()
	}
	if r.err != nil {
		if errors.Is(r.err, ErrConnClosed) {
			return false, r.err
		}
		return false, errs.NewQueryError(r.query, r.err)
	}
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errs.NewQueryError(r.query, deadline(r.ctx, err))
	}
	return true, nil
}

// deadline tags err as a timeout when the statement context expired, since
// drivers report cancellation in their own words.
func deadline(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

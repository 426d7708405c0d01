// Package hours records and reports the working time of a single employee.
//
// A Manager is bound to one employee id and issues exactly one statement per
// operation. Whether it keeps one connection for its whole lifetime or opens
// one per call is chosen at construction with WithScope.
package hours

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TechXTT/workhours/pkg/errs"
	"github.com/TechXTT/workhours/pkg/runtime"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrClosed          = errors.New("hours: manager is closed")
	ErrInvalidDuration = errors.New("hours: duration must be positive")
	ErrInvalidRange    = errors.New("hours: range starts after it ends")
	ErrInvalidRate     = errors.New("hours: rate must not be negative")
	// ErrRateNotFound is returned when the employee has no hourly rate.
	ErrRateNotFound = fmt.Errorf("hours: employee rate %w", errs.ErrNotFound)
)

// Scope decides how long a Manager holds a connection.
type Scope int

const (
	// Lazy opens, commits and releases a connection within each call.
	Lazy Scope = iota
	// Eager opens one connection at construction and keeps it until Close.
	// A call that fails because the connection was lost still returns that
	// error; the connection is dropped and the next call opens a new one.
	Eager
)

func (s Scope) String() string {
	if s == Eager {
		return "eager"
	}
	return "lazy"
}

// ParseScope accepts "eager" or "lazy".
func ParseScope(s string) (Scope, error) {
	switch s {
	case "eager":
		return Eager, nil
	case "lazy", "":
		return Lazy, nil
	default:
		return Lazy, fmt.Errorf("unknown scope %q", s)
	}
}

// Option customizes a Manager.
type Option func(*Manager)

func WithScope(s Scope) Option {
	return func(m *Manager) { m.scope = s }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock replaces the time source used to stamp logged entries.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager logs and aggregates working time for one employee.
type Manager struct {
	provider   runtime.Provider
	employeeID int64
	scope      Scope
	log        zerolog.Logger
	now        func() time.Time

	mu     sync.Mutex
	conn   runtime.Conn
	closed bool
}

// NewManager binds a manager to employeeID. With the Eager scope the
// connection is opened here and a failure is returned as
// *errs.ConnectionError.
func NewManager(ctx context.Context, provider runtime.Provider, employeeID int64, opts ...Option) (*Manager, error) {
	m := &Manager{
		provider:   provider,
		employeeID: employeeID,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().Str("component", "hours").Int64("employee_id", employeeID).Logger()

	if m.scope == Eager {
		conn, err := provider.Open(ctx)
		if err != nil {
			m.log.Error().Err(err).Msg("failed to open manager connection")
			return nil, err
		}
		m.conn = conn
	}
	return m, nil
}

func (m *Manager) EmployeeID() int64 { return m.employeeID }

func (m *Manager) Scope() Scope { return m.scope }

// Log records seconds of work stamped with the current time.
func (m *Manager) Log(ctx context.Context, seconds int64) error {
	if seconds <= 0 {
		return ErrInvalidDuration
	}
	loggedAt := m.now().UTC()
	return m.run(ctx, "log", func(ctx context.Context, conn runtime.Conn) error {
		return conn.Exec(ctx, insertLog, m.employeeID, seconds, loggedAt)
	})
}

// Total returns the employee's summed logged time multiplied by TotalScale.
// It is 0 when nothing has been logged.
func (m *Manager) Total(ctx context.Context) (int64, error) {
	var total int64
	err := m.run(ctx, "total", func(ctx context.Context, conn runtime.Conn) error {
		ok, err := totalQuery(m.employeeID).One(ctx, conn, &total)
		if err == nil && !ok {
			total = 0
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Payslip is the outcome of a salary computation.
type Payslip struct {
	EmployeeID int64
	From       time.Time
	To         time.Time
	Seconds    int64
	Rate       decimal.Decimal
	Amount     decimal.Decimal
}

// Payslip computes the logged seconds between from and to, both inclusive,
// and their product with the employee's hourly rate in a single statement.
func (m *Manager) Payslip(ctx context.Context, from, to time.Time) (Payslip, error) {
	if from.After(to) {
		return Payslip{}, ErrInvalidRange
	}
	p := Payslip{EmployeeID: m.employeeID, From: from.UTC(), To: to.UTC()}
	err := m.run(ctx, "salary", func(ctx context.Context, conn runtime.Conn) error {
		ok, err := payslipQuery(m.employeeID, p.From, p.To).One(ctx, conn, &p.Seconds, &p.Rate, &p.Amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRateNotFound
		}
		// Seconds are whole, so the exact product carries the rate's scale.
		// Drivers that multiply in floating point are rounded back to it.
		p.Amount = p.Amount.Round(-p.Rate.Exponent())
		return nil
	})
	if err != nil {
		return Payslip{}, err
	}
	return p, nil
}

// Salary returns the amount owed for the time logged between from and to.
// ErrRateNotFound is returned when the employee has no rate.
func (m *Manager) Salary(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	p, err := m.Payslip(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Amount, nil
}

// Close releases the eager connection. Later calls fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	if err != nil {
		m.log.Error().Err(err).Msg("failed to release manager connection")
	}
	return err
}

// run executes fn as one unit of work on the scoped connection.
func (m *Manager) run(ctx context.Context, method string, fn func(context.Context, runtime.Conn) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	log := m.log.With().Str("method", method).Logger()
	ctx = log.WithContext(ctx)

	var err error
	if m.scope == Eager {
		if m.conn == nil {
			conn, oerr := m.provider.Open(ctx)
			if oerr != nil {
				log.Error().Err(oerr).Msg("failed to reopen manager connection")
				return oerr
			}
			m.conn = conn
		}
		err = runtime.Unit(ctx, m.conn, fn)
		if connLost(err) {
			if cerr := m.conn.Close(); cerr != nil {
				log.Debug().Err(cerr).Msg("closing lost connection")
			}
			m.conn = nil
			log.Warn().Err(err).Msg("manager connection lost")
		}
	} else {
		err = runtime.Scope(ctx, m.provider, fn)
	}

	switch {
	case err == nil:
	case errs.IsNotFound(err):
		log.Debug().Err(err).Send()
	default:
		log.Error().Err(err).Msg("operation failed")
	}
	return err
}

func connLost(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errs.IsConnection(err)
}

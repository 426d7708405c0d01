package hours

import (
	"context"

	"github.com/TechXTT/workhours/pkg/runtime"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateStore maintains the current hourly rate of employees. Managers only
// read rates.
type RateStore struct {
	provider runtime.Provider
	log      zerolog.Logger
}

func NewRateStore(provider runtime.Provider, log zerolog.Logger) *RateStore {
	return &RateStore{
		provider: provider,
		log:      log.With().Str("component", "rates").Logger(),
	}
}

// SetRate stores rate as the employee's current hourly rate, replacing any
// previous one.
func (s *RateStore) SetRate(ctx context.Context, employeeID int64, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return ErrInvalidRate
	}
	err := runtime.Scope(ctx, s.provider, func(ctx context.Context, conn runtime.Conn) error {
		return conn.Exec(ctx, upsertRate, employeeID, rate)
	})
	if err != nil {
		s.log.Error().Err(err).Int64("employee_id", employeeID).Msg("failed to set rate")
	}
	return err
}

// Rate returns the employee's current hourly rate or ErrRateNotFound.
func (s *RateStore) Rate(ctx context.Context, employeeID int64) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := runtime.Scope(ctx, s.provider, func(ctx context.Context, conn runtime.Conn) error {
		ok, err := rateQuery(employeeID).One(ctx, conn, &rate)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRateNotFound
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

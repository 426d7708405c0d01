package runtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Unit runs fn as one unit of work on conn. Pending work is committed when fn
// succeeds and rolled back when it fails or panics. The error of fn is
// returned as is; a failed rollback is only logged.
func Unit(ctx context.Context, conn Conn, fn func(ctx context.Context, conn Conn) error) (err error) {
	log := zerolog.Ctx(ctx).With().Str("unit", uuid.NewString()).Logger()
	ctx = log.WithContext(ctx)

	defer func() {
		if p := recover(); p != nil {
			if rbErr := conn.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("rollback after panic failed")
			}
			panic(p)
		}
	}()

	if err = fn(ctx, conn); err != nil {
		if rbErr := conn.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err = conn.Commit(); err != nil {
		log.Error().Err(err).Msg("commit failed")
		return err
	}
	log.Trace().Msg("unit committed")
	return nil
}

// Scope opens a connection from p, runs fn as a Unit and releases the
// connection on every exit path.
func Scope(ctx context.Context, p Provider, fn func(ctx context.Context, conn Conn) error) (err error) {
	conn, err := p.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := conn.Close(); cErr != nil {
			zerolog.Ctx(ctx).Warn().Err(cErr).Msg("failed to release connection")
			if err == nil {
				err = cErr
			}
		}
	}()
	return Unit(ctx, conn, fn)
}

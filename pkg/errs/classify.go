package errs

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLSTATE values and classes we care about.
const (
	sqlStateQueryCanceled   = "57014"
	sqlStateClassConstraint = "23"
	sqlStateClassSyntax     = "42"
)

// Classify maps a driver error onto a Kind. It understands lib/pq, pgx and
// modernc sqlite errors, and context deadlines.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr)
	}
	return KindOther
}

func classifySQLState(code string) Kind {
	switch {
	case code == sqlStateQueryCanceled:
		return KindTimeout
	case strings.HasPrefix(code, sqlStateClassConstraint):
		return KindConstraint
	case strings.HasPrefix(code, sqlStateClassSyntax):
		return KindSyntax
	default:
		return KindOther
	}
}

func classifySQLite(e *sqlite.Error) Kind {
	// extended result codes keep the primary code in the low byte
	switch e.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return KindConstraint
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_INTERRUPT:
		return KindTimeout
	case sqlite3.SQLITE_ERROR:
		msg := e.Error()
		if strings.Contains(msg, "syntax error") || strings.Contains(msg, "no such") {
			return KindSyntax
		}
	}
	return KindOther
}

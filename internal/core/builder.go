// File: internal/core/builder.go
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/TechXTT/workhours/pkg/runtime"
)

// QueryBuilder is a fluent builder for single-row and aggregate SELECTs.
// Placeholders are written as ? and rebound by the connection.
type QueryBuilder struct {
	selectCols  []string
	sources     []string // FROM table or derived tables, cross joined
	sourceArgs  []any
	joinClauses []string
	whereOps    []string
	whereArgs   []any
	limit       int
}

// Select starts a builder with the given select list.
func Select(cols ...string) *QueryBuilder {
	return &QueryBuilder{selectCols: cols}
}

func (qb *QueryBuilder) From(table string) *QueryBuilder {
	qb.sources = append(qb.sources, table)
	return qb
}

// FromSub selects from a derived table built by sub.
func (qb *QueryBuilder) FromSub(sub *QueryBuilder, alias string) *QueryBuilder {
	query, args := sub.Build()
	qb.sources = append(qb.sources, fmt.Sprintf("(%s) AS %s", query, alias))
	qb.sourceArgs = append(qb.sourceArgs, args...)
	return qb
}

// CrossJoin pairs every row so far with every row of the derived table built
// by sub. A sub yielding no rows makes the whole statement yield none.
func (qb *QueryBuilder) CrossJoin(sub *QueryBuilder, alias string) *QueryBuilder {
	query, args := sub.Build()
	qb.joinClauses = append(qb.joinClauses, fmt.Sprintf("CROSS JOIN (%s) AS %s", query, alias))
	qb.sourceArgs = append(qb.sourceArgs, args...)
	return qb
}

func (qb *QueryBuilder) Where(cond string, vals ...any) *QueryBuilder {
	qb.whereOps = append(qb.whereOps, cond)
	qb.whereArgs = append(qb.whereArgs, vals...)
	return qb
}

// Limit sets the LIMIT clause
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.limit = n
	return qb
}

// Build assembles the SQL query string and returns it with args in
// placeholder order.
func (qb *QueryBuilder) Build() (string, []any) {
	parts := []string{"SELECT"}
	if len(qb.selectCols) > 0 {
		parts = append(parts, strings.Join(qb.selectCols, ", "))
	} else {
		parts = append(parts, "*")
	}
	if len(qb.sources) > 0 {
		parts = append(parts, "FROM", strings.Join(qb.sources, " CROSS JOIN "))
	}
	if len(qb.joinClauses) > 0 {
		parts = append(parts, strings.Join(qb.joinClauses, " "))
	}
	if len(qb.whereOps) > 0 {
		parts = append(parts, "WHERE", strings.Join(qb.whereOps, " AND "))
	}
	if qb.limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", qb.limit))
	}

	args := make([]any, 0, len(qb.sourceArgs)+len(qb.whereArgs))
	args = append(args, qb.sourceArgs...)
	args = append(args, qb.whereArgs...)
	return strings.Join(parts, " "), args
}

// One runs the query restricted to a single row and scans it into dest.
// It reports false when nothing matched.
func (qb *QueryBuilder) One(ctx context.Context, conn runtime.Conn, dest ...any) (bool, error) {
	single := *qb
	single.limit = 1
	query, args := single.Build()
	return conn.QueryRow(ctx, query, args...).FetchOne(dest...)
}


package core

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/TechXTT/workhours/pkg/runtime"
	"github.com/stretchr/testify/require"
)

func TestBuild_WithAllClauses(t *testing.T) {
	qb := Select("id", "name").
		From("users").
		Where("active = ?", true).
		Where("team = ?", "ops").
		Limit(10)

	sql, args := qb.Build()
	require.Equal(t,
		"SELECT id, name FROM users WHERE active = ? AND team = ? LIMIT 10",
		sql,
	)
	require.Equal(t, []any{true, "ops"}, args)
}

func TestBuild_Defaults(t *testing.T) {
	sql, args := Select().From("items").Build()
	require.Equal(t, "SELECT * FROM items", sql)
	require.Empty(t, args)
}

func TestBuild_CrossJoinOrdersArgs(t *testing.T) {
	x := Select("SUM(v) AS total").From("a").Where("k = ?", 1).Where("d >= ?", "lo")
	y := Select("rate").From("b").Where("k = ?", 2).Limit(1)

	sql, args := Select("x.total", "y.rate").
		FromSub(x, "x").
		CrossJoin(y, "y").
		Where("x.total > ?", 0).
		Build()

	require.Equal(t,
		"SELECT x.total, y.rate FROM (SELECT SUM(v) AS total FROM a WHERE k = ? AND d >= ?) AS x CROSS JOIN (SELECT rate FROM b WHERE k = ? LIMIT 1) AS y WHERE x.total > ?",
		sql,
	)
	require.Equal(t, []any{1, "lo", 2, 0}, args)
}

func openConn(t *testing.T) (runtime.Conn, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dialect, err := runtime.DialectFor(runtime.DriverSQLite)
	require.NoError(t, err)
	conn, err := runtime.NewProvider(db, dialect).Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestOne_LimitsToSingleRow(t *testing.T) {
	conn, mock := openConn(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT name FROM users WHERE id = \? LIMIT 1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("TechXT"))

	qb := Select("name").From("users").Where("id = ?", 3)

	var name string
	ok, err := qb.One(context.Background(), conn, &name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "TechXT", name)

	// the builder itself is left untouched
	sql, _ := qb.Build()
	require.NotContains(t, sql, "LIMIT")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOne_NoRow(t *testing.T) {
	conn, mock := openConn(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT name FROM users WHERE id = \? LIMIT 1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	var name string
	ok, err := Select("name").From("users").Where("id = ?", 4).One(context.Background(), conn, &name)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

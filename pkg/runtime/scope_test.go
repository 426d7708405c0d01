package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnit(t *testing.T) {
	t.Parallel()

	errWork := errors.New("work failed")
	errCommit := errors.New("commit failed")

	tests := []struct {
		name    string
		conn    func() *ConnMock
		work    error
		wantErr error
	}{
		{
			name: "commits on success",
			conn: func() *ConnMock {
				c := &ConnMock{}
				c.On("Commit").Return(nil).Once()
				return c
			},
		},
		{
			name: "rolls back on failure",
			conn: func() *ConnMock {
				c := &ConnMock{}
				c.On("Rollback").Return(nil).Once()
				return c
			},
			work:    errWork,
			wantErr: errWork,
		},
		{
			name: "keeps work error when rollback fails",
			conn: func() *ConnMock {
				c := &ConnMock{}
				c.On("Rollback").Return(errors.New("rollback failed")).Once()
				return c
			},
			work:    errWork,
			wantErr: errWork,
		},
		{
			name: "reports commit failure",
			conn: func() *ConnMock {
				c := &ConnMock{}
				c.On("Commit").Return(errCommit).Once()
				return c
			},
			wantErr: errCommit,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := tt.conn()
			err := Unit(context.Background(), conn, func(ctx context.Context, c Conn) error {
				require.Same(t, conn, c)
				return tt.work
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			conn.AssertExpectations(t)
		})
	}
}

func TestUnit_PanicRollsBack(t *testing.T) {
	t.Parallel()

	conn := &ConnMock{}
	conn.On("Rollback").Return(nil).Once()

	require.Panics(t, func() {
		_ = Unit(context.Background(), conn, func(context.Context, Conn) error {
			panic("kaboom")
		})
	})
	conn.AssertExpectations(t)
	conn.AssertNotCalled(t, "Commit")
}

func TestScope(t *testing.T) {
	t.Parallel()

	t.Run("opens, commits and closes", func(t *testing.T) {
		t.Parallel()

		conn := &ConnMock{}
		conn.On("Exec", mock.Anything, "INSERT 1", []any(nil)).Return(nil).Once()
		conn.On("Commit").Return(nil).Once()
		conn.On("Close").Return(nil).Once()

		p := &ProviderMock{}
		p.On("Open", mock.Anything).Return(conn, nil).Once()

		err := Scope(context.Background(), p, func(ctx context.Context, c Conn) error {
			return c.Exec(ctx, "INSERT 1")
		})
		require.NoError(t, err)
		p.AssertExpectations(t)
		conn.AssertExpectations(t)
	})

	t.Run("closes after failure", func(t *testing.T) {
		t.Parallel()

		errWork := errors.New("nope")
		conn := &ConnMock{}
		conn.On("Rollback").Return(nil).Once()
		conn.On("Close").Return(nil).Once()

		p := &ProviderMock{}
		p.On("Open", mock.Anything).Return(conn, nil).Once()

		err := Scope(context.Background(), p, func(context.Context, Conn) error { return errWork })
		require.ErrorIs(t, err, errWork)
		conn.AssertExpectations(t)
	})

	t.Run("closes after panic", func(t *testing.T) {
		t.Parallel()

		conn := &ConnMock{}
		conn.On("Rollback").Return(nil).Once()
		conn.On("Close").Return(nil).Once()

		p := &ProviderMock{}
		p.On("Open", mock.Anything).Return(conn, nil).Once()

		require.Panics(t, func() {
			_ = Scope(context.Background(), p, func(context.Context, Conn) error { panic("kaboom") })
		})
		conn.AssertExpectations(t)
	})

	t.Run("reports close failure", func(t *testing.T) {
		t.Parallel()

		errClose := errors.New("close failed")
		conn := &ConnMock{}
		conn.On("Commit").Return(nil).Once()
		conn.On("Close").Return(errClose).Once()

		p := &ProviderMock{}
		p.On("Open", mock.Anything).Return(conn, nil).Once()

		err := Scope(context.Background(), p, func(context.Context, Conn) error { return nil })
		require.ErrorIs(t, err, errClose)
	})

	t.Run("open failure runs nothing", func(t *testing.T) {
		t.Parallel()

		errOpen := errors.New("refused")
		p := &ProviderMock{}
		p.On("Open", mock.Anything).Return(nil, errOpen).Once()

		called := false
		err := Scope(context.Background(), p, func(context.Context, Conn) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, errOpen)
		require.False(t, called)
	})
}

package runtime

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ConnMock struct {
	mock.Mock
}

func (m *ConnMock) Exec(ctx context.Context, query string, args ...any) error {
	ret := m.Called(ctx, query, args)
	return ret.Error(0)
}

func (m *ConnMock) QueryRow(ctx context.Context, query string, args ...any) Result {
	ret := m.Called(ctx, query, args)
	return ret.Get(0).(Result)
}

func (m *ConnMock) Commit() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *ConnMock) Rollback() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *ConnMock) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

type ResultMock struct {
	mock.Mock
}

func (m *ResultMock) FetchOne(dest ...any) (bool, error) {
	ret := m.Called(dest)
	return ret.Bool(0), ret.Error(1)
}

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Open(ctx context.Context) (Conn, error) {
	ret := m.Called(ctx)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(Conn), ret.Error(1)
}

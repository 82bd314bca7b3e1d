package application

import (
	"context"

	"github.com/stretchr/testify/mock"

	"equipment-console/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Debug(context.Context, string, ...any) {}

type userGatewayMock struct{ mock.Mock }

func (m *userGatewayMock) List(ctx context.Context) (domain.Collection[domain.User], error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Collection[domain.User]), args.Error(1)
}

func (m *userGatewayMock) AssignPermission(ctx context.Context, userID int64, permission string) error {
	args := m.Called(ctx, userID, permission)
	return args.Error(0)
}

func (m *userGatewayMock) RemovePermission(ctx context.Context, userID int64, permission string) error {
	args := m.Called(ctx, userID, permission)
	return args.Error(0)
}

type listerMock[T any] struct{ mock.Mock }

func (m *listerMock[T]) List(ctx context.Context) (domain.Collection[T], error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Collection[T]), args.Error(1)
}

func userWith(id int64, names ...string) domain.User {
	u := domain.User{ID: id, Name: "user"}
	for i, n := range names {
		u.Permissions = append(u.Permissions, domain.Permission{ID: int64(i + 1), Name: n, GuardName: "web"})
	}
	return u
}

func usersOf(users ...domain.User) domain.Collection[domain.User] {
	return domain.Collection[domain.User]{Items: users}
}

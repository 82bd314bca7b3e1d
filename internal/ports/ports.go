package ports

import (
	"context"

	"equipment-console/internal/domain"
)

type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Debug(ctx context.Context, msg string, args ...any)
}

// TokenStore persists the bearer credential between runs under a fixed key.
// Load returns an empty token and no error when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

type Lister[T any] interface {
	List(ctx context.Context) (domain.Collection[T], error)
}

type UserPermissionGateway interface {
	List(ctx context.Context) (domain.Collection[domain.User], error)
	AssignPermission(ctx context.Context, userID int64, permission string) error
	RemovePermission(ctx context.Context, userID int64, permission string) error
}

package identity

import (
	"context"
	"errors"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

// Store resolves authenticated principals to their stored profile.
type Store interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) error
}

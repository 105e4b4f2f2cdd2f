// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/osokin/talkie/internal/model"
)

// UserRepository provides access to account rows.
type UserRepository interface {
	// Create inserts a new user and fills the assigned id.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by id.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByPhone loads a user by normalized phone.
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	// Search finds users by username or nickname substring; an empty query
	// lists users up to limit.
	Search(ctx context.Context, query string, limit int) ([]model.Identity, error)
}

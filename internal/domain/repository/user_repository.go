package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
)

// ErrNotFound is returned by all repositories when the requested record
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint (email, username,
// token) rejects a write, or a conditional update loses a race.
var ErrConflict = errors.New("conflict")

// UserRepository defines the persistence operations the identity workflows
// need for users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// Search is the database fallback used when Elasticsearch is not wired.
	Search(ctx context.Context, q string, limit int) ([]*entity.User, error)
}

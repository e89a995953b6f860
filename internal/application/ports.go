package application

import (
	"context"
	"time"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
)

// EventPublisher pushes serialized domain events onto the event queue.
// *helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// LoginGuard tracks failed login attempts and decides when an account is
// temporarily locked. *helpers.LockoutTracker satisfies it; tests swap in
// an in-memory implementation.
type LoginGuard interface {
	Locked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}

// ConfirmTokenStore holds one-shot email confirmation tokens between the
// mail going out and the link being clicked. *helpers.ConfirmTokenStore
// satisfies it; tests swap in an in-memory implementation.
type ConfirmTokenStore interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Get resolves the token to the user it was issued for. A missing or
	// expired token reports found=false with a nil error.
	Get(ctx context.Context, token string) (userID string, found bool, err error)
	Del(ctx context.Context, token string) error
}

// UserIndexer mirrors a user into the search index. *UserService
// satisfies it so registration and profile mutations share one indexing
// path.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User)
}

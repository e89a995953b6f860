package repository

import (
	"context"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
)

// RefreshTokenRepository persists refresh tokens. Rotation must be atomic:
// at most one concurrent caller may win the revoke of a given token.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *entity.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	// Rotate revokes old (setting replaced_by to the replacement's value)
	// and inserts the replacement in one transaction. When another caller
	// already revoked old, Rotate returns ErrConflict and writes nothing.
	Rotate(ctx context.Context, old *entity.RefreshToken, replacement *entity.RefreshToken, revokedByIP string) error
	// RevokeAllForUser revokes every active token of the user and reports
	// how many were revoked.
	RevokeAllForUser(ctx context.Context, userID, revokedByIP string) (int64, error)
	// DeleteExpired removes tokens past their expiry. Run periodically.
	DeleteExpired(ctx context.Context) (int64, error)
}

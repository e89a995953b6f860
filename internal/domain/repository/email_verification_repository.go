package repository

import (
	"context"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
)

// EmailVerificationRepository stores at most one verification code per
// email address.
type EmailVerificationRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.EmailVerification, error)
	// Save upserts the record for v.Email.
	Save(ctx context.Context, v *entity.EmailVerification) error
	// Delete consumes the record after a successful verification.
	Delete(ctx context.Context, email string) error
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	"github.com/oksasatya/tiktok-clone-auth/internal/domain/repository"
)

type EmailVerificationRepository struct {
	pool *pgxpool.Pool
}

func NewEmailVerificationRepository(pool *pgxpool.Pool) *EmailVerificationRepository {
	return &EmailVerificationRepository{pool: pool}
}

func (r *EmailVerificationRepository) GetByEmail(ctx context.Context, email string) (*entity.EmailVerification, error) {
	v := &entity.EmailVerification{}
	err := r.pool.QueryRow(ctx, `
		SELECT email, code, expires_at, last_generated_at
		FROM email_verifications
		WHERE email = $1
	`, email).Scan(&v.Email, &v.Code, &v.ExpiresAt, &v.LastGeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *EmailVerificationRepository) Save(ctx context.Context, v *entity.EmailVerification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_verifications (email, code, expires_at, last_generated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code,
			expires_at = EXCLUDED.expires_at,
			last_generated_at = EXCLUDED.last_generated_at
	`, v.Email, v.Code, v.ExpiresAt, v.LastGeneratedAt)
	return err
}

func (r *EmailVerificationRepository) Delete(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM email_verifications WHERE email = $1`, email)
	return err
}

var _ repository.EmailVerificationRepository = (*EmailVerificationRepository)(nil)

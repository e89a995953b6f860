package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	"github.com/oksasatya/tiktok-clone-auth/internal/domain/repository"
)

type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

const tokenColumns = `token, user_id, created_at, expires_at, revoked_at,
	replaced_by_token, created_by_ip, revoked_by_ip`

func scanToken(row pgx.Row) (*entity.RefreshToken, error) {
	t := &entity.RefreshToken{}
	var replacedBy, createdByIP, revokedByIP *string
	err := row.Scan(&t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt,
		&t.RevokedAt, &replacedBy, &createdByIP, &revokedByIP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if replacedBy != nil {
		t.ReplacedByToken = *replacedBy
	}
	if createdByIP != nil {
		t.CreatedByIP = *createdByIP
	}
	if revokedByIP != nil {
		t.RevokedByIP = *revokedByIP
	}
	return t, nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *entity.RefreshToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, created_at, expires_at, created_by_ip)
		VALUES ($1, $2, $3, $4, $5)
	`, t.Token, t.UserID, t.CreatedAt, t.ExpiresAt, t.CreatedByIP)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	return scanToken(r.pool.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE token = $1`, token))
}

// Rotate revokes old and inserts replacement in one transaction. The
// conditional update is the linearization point: whichever caller flips
// revoked_at from NULL wins, everyone else gets ErrConflict.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, old, replacement *entity.RefreshToken, revokedByIP string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $1, replaced_by_token = $2, revoked_by_ip = $3
		WHERE token = $4 AND revoked_at IS NULL
	`, time.Now().UTC(), replacement.Token, revokedByIP, old.Token)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, created_at, expires_at, created_by_ip)
		VALUES ($1, $2, $3, $4, $5)
	`, replacement.Token, replacement.UserID, replacement.CreatedAt,
		replacement.ExpiresAt, replacement.CreatedByIP)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID, revokedByIP string) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = $1, revoked_by_ip = $2
		WHERE user_id = $3 AND revoked_at IS NULL
	`, time.Now().UTC(), revokedByIP, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)

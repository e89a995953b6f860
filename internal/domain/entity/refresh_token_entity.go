package entity

import "time"

// RefreshToken is an opaque long-lived credential exchanged for a new
// access/refresh pair. Once revoked or expired it never becomes active
// again; rotation links the old token to its successor.
type RefreshToken struct {
	Token           string
	UserID          string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	RevokedAt       *time.Time
	ReplacedByToken string
	CreatedByIP     string
	RevokedByIP     string
}

// NewRefreshToken binds an opaque token value to a user with the given lifetime.
func NewRefreshToken(token, userID string, ttl time.Duration, createdByIP string) *RefreshToken {
	now := time.Now().UTC()
	return &RefreshToken{
		Token:       token,
		UserID:      userID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		CreatedByIP: createdByIP,
	}
}

func (t *RefreshToken) IsExpired() bool { return !time.Now().UTC().Before(t.ExpiresAt) }

func (t *RefreshToken) IsRevoked() bool { return t.RevokedAt != nil }

func (t *RefreshToken) IsActive() bool { return !t.IsRevoked() && !t.IsExpired() }

// Revoke marks the token revoked, optionally linking its replacement.
// A second revoke is a no-op and returns false.
func (t *RefreshToken) Revoke(replacedByToken, revokedByIP string) bool {
	if t.IsRevoked() {
		return false
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	t.ReplacedByToken = replacedByToken
	t.RevokedByIP = revokedByIP
	return true
}

// CanBeRefreshed reports whether presenting this token should yield a new pair.
func (t *RefreshToken) CanBeRefreshed() bool { return t.IsActive() }

package entity

import "time"

// Verification-code policy. The expiry unit is hours everywhere; the
// regeneration path uses the same constant as the constructor.
const (
	CodeLifetime      = 48 * time.Hour
	CodeRegenCooldown = 60 * time.Second
)

// EmailVerification is a short-lived 6-digit code proving ownership of an
// email address. It is keyed by email, not by user, so it also works
// before registration. The code value is supplied by the caller so tests
// can inject deterministic sequences.
type EmailVerification struct {
	Email           string
	Code            string
	ExpiresAt       time.Time
	LastGeneratedAt time.Time
}

// NewEmailVerification creates the first code for an email.
func NewEmailVerification(email, code string, now time.Time) *EmailVerification {
	return &EmailVerification{
		Email:           normalize(email),
		Code:            code,
		ExpiresAt:       now.Add(CodeLifetime),
		LastGeneratedAt: now,
	}
}

// Regenerate replaces the code and extends the expiry. It refuses inside
// the cooldown window and leaves the record untouched in that case.
func (v *EmailVerification) Regenerate(code string, now time.Time) bool {
	if now.Sub(v.LastGeneratedAt) <= CodeRegenCooldown {
		return false
	}
	v.Code = code
	v.ExpiresAt = now.Add(CodeLifetime)
	v.LastGeneratedAt = now
	return true
}

// IsActive reports whether the code has not yet expired.
func (v *EmailVerification) IsActive(now time.Time) bool {
	return v.ExpiresAt.After(now)
}

// Matches reports whether the presented code is both correct and active.
func (v *EmailVerification) Matches(code string, now time.Time) bool {
	return v.IsActive(now) && v.Code == code
}

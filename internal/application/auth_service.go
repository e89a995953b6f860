package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	"github.com/oksasatya/tiktok-clone-auth/internal/domain/event"
	repo "github.com/oksasatya/tiktok-clone-auth/internal/domain/repository"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
	"github.com/oksasatya/tiktok-clone-auth/pkg/mailer"
)

const (
	refreshTokenBytes = 32
	confirmTokenBytes = 32
	confirmLinkTTL    = 48 * time.Hour
)

// AuthService implements the account lifecycle: registration, login with
// lockout, token refresh and revocation, email confirmation, and password
// reset.
type AuthService struct {
	Users   repo.UserRepository
	Tokens  repo.RefreshTokenRepository
	Codes   repo.EmailVerificationRepository
	JWT     *helpers.JWTManager
	Guard   LoginGuard
	Events  EventPublisher
	Mail    EventPublisher
	Confirm ConfirmTokenStore
	Index   UserIndexer
	Logger  *logrus.Logger

	RefreshTTL      time.Duration
	ConfirmEmailURL string
}

type TokenPair struct {
	AccessToken   string
	AccessExpiry  time.Time
	RefreshToken  string
	RefreshExpiry time.Time
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// publish sends a domain event to the event queue. Delivery is best
// effort; a broker outage must not fail the workflow that produced it.
func (s *AuthService) publish(ctx context.Context, ev event.Event) {
	if s.Events == nil || ev == nil {
		return
	}
	msg := map[string]any{"event": ev.Name(), "payload": ev}
	if err := s.Events.PublishJSON(ctx, msg); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", ev.Name()).Warn("event publish failed")
	}
}

func (s *AuthService) enqueueMail(ctx context.Context, job mailer.EmailJob) error {
	if s.Mail == nil {
		return ErrEmailSend
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("to", job.To).Error("email enqueue failed")
		}
		return ErrEmailSend
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, u *entity.User, ip string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u)
	if err != nil {
		return TokenPair{}, err
	}
	opaque, err := helpers.OpaqueToken(refreshTokenBytes)
	if err != nil {
		return TokenPair{}, err
	}
	rt := entity.NewRefreshToken(opaque, u.ID, s.RefreshTTL, ip)
	if err := s.Tokens.Create(ctx, rt); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:   access,
		AccessExpiry:  aexp,
		RefreshToken:  rt.Token,
		RefreshExpiry: rt.ExpiresAt,
	}, nil
}

// Login authenticates by email or username plus password. Failed attempts
// count toward a temporary lock; a correct password on an unconfirmed email
// is refused after resetting the counter.
func (s *AuthService) Login(ctx context.Context, identifier, password, ip string) (*entity.User, TokenPair, error) {
	email := normalizeEmail(identifier)

	locked, err := s.Guard.Locked(ctx, email)
	if err != nil && s.Logger != nil {
		// fail open on guard errors
		s.Logger.WithError(err).Warn("login guard unavailable")
	}
	if locked {
		return nil, TokenPair{}, ErrAccountLocked
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) && !strings.Contains(email, "@") {
		u, err = s.Users.GetByUsername(ctx, email)
	}
	if err != nil || !helpers.CompareHashAndPassword(passwordHashOf(u), password) {
		tripped, gErr := s.Guard.RecordFailure(ctx, email)
		if gErr != nil && s.Logger != nil {
			s.Logger.WithError(gErr).Warn("login guard unavailable")
		}
		if tripped {
			return nil, TokenPair{}, ErrAccountLocked
		}
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if gErr := s.Guard.Reset(ctx, email); gErr != nil && s.Logger != nil {
		s.Logger.WithError(gErr).Warn("login guard unavailable")
	}

	if !u.EmailConfirmed {
		return nil, TokenPair{}, ErrEmailNotConfirmed
	}

	ev := u.RecordLogin()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, TokenPair{}, ErrUserUpdate
	}
	s.publish(ctx, ev)

	pair, err := s.issueTokens(ctx, u, ip)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// passwordHashOf lets the comparison above run even for unknown users so
// a missing account costs the same bcrypt work as a wrong password.
func passwordHashOf(u *entity.User) string {
	if u == nil {
		return "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva"
	}
	return u.PasswordHash
}

type RegisterInput struct {
	Email     string
	Password  string
	Code      string
	BirthDate time.Time
	IP        string
}

// Register creates an account for an email that already proved ownership
// with a verification code. The generated username can be changed later.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenPair, error) {
	email := normalizeEmail(in.Email)
	now := time.Now().UTC()

	v, err := s.Codes.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCode
	}
	if !v.IsActive(now) {
		return nil, TokenPair{}, ErrCodeExpired
	}
	if v.Code != in.Code {
		return nil, TokenPair{}, ErrInvalidCode
	}

	if existing, _ := s.Users.GetByEmail(ctx, email); existing != nil {
		return nil, TokenPair{}, ErrEmailUsed
	}

	username, err := s.generateUsername(ctx)
	if err != nil {
		return nil, TokenPair{}, ErrRegistration
	}

	u, created, err := entity.NewUser(email, username, in.BirthDate)
	if err != nil {
		return nil, TokenPair{}, wrapDomain(err)
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, ErrRegistration
	}
	u.ChangePassword(hash)
	confirmed := u.ConfirmEmail()

	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, TokenPair{}, ErrEmailUsed
		}
		return nil, TokenPair{}, ErrRegistration
	}

	if err := s.Codes.Delete(ctx, email); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", email).Warn("verification code cleanup failed")
	}

	if s.Index != nil {
		s.Index.IndexUser(ctx, u)
	}
	s.publish(ctx, created)
	s.publish(ctx, confirmed)

	_ = s.enqueueMail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: "welcome",
		Data:     map[string]any{"username": u.Username},
	})

	pair, err := s.issueTokens(ctx, u, in.IP)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// generateUsername derives a unique placeholder handle. Collisions are
// vanishingly rare with 48 random bits but we retry a few times anyway.
func (s *AuthService) generateUsername(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		suffix, err := helpers.ShortSuffix()
		if err != nil {
			return "", err
		}
		candidate := "user" + suffix
		if _, err := s.Users.GetByUsername(ctx, candidate); errors.Is(err, repo.ErrNotFound) {
			return candidate, nil
		}
	}
	return "", errors.New("could not generate a unique username")
}

// Refresh rotates an opaque refresh token: the presented token is revoked
// and replaced in one transaction, and a new access token is signed.
// Presenting an already revoked token revokes the user's whole family,
// since it means the token leaked or a race was lost.
func (s *AuthService) Refresh(ctx context.Context, token, ip string) (*entity.User, TokenPair, error) {
	if token == "" {
		return nil, TokenPair{}, ErrInvalidRefresh
	}
	rt, err := s.Tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefresh
	}
	if rt.IsRevoked() {
		if n, rErr := s.Tokens.RevokeAllForUser(ctx, rt.UserID, ip); rErr == nil && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": rt.UserID, "revoked": n}).
				Warn("revoked token presented, token family invalidated")
		}
		return nil, TokenPair{}, ErrInvalidRefresh
	}
	if rt.IsExpired() {
		return nil, TokenPair{}, ErrTokenExpired
	}

	u, err := s.Users.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefresh
	}

	access, aexp, err := s.JWT.GenerateAccessToken(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	opaque, err := helpers.OpaqueToken(refreshTokenBytes)
	if err != nil {
		return nil, TokenPair{}, err
	}
	replacement := entity.NewRefreshToken(opaque, u.ID, s.RefreshTTL, ip)
	if err := s.Tokens.Rotate(ctx, rt, replacement, ip); err != nil {
		return nil, TokenPair{}, ErrInvalidRefresh
	}

	return u, TokenPair{
		AccessToken:   access,
		AccessExpiry:  aexp,
		RefreshToken:  replacement.Token,
		RefreshExpiry: replacement.ExpiresAt,
	}, nil
}

// Logout ends every session of the user owning the presented refresh
// token. An unknown or already revoked token fails.
func (s *AuthService) Logout(ctx context.Context, token, ip string) error {
	if token == "" {
		return ErrLogout
	}
	rt, err := s.Tokens.GetByToken(ctx, token)
	if err != nil || rt.IsRevoked() {
		return ErrLogout
	}
	if _, err := s.Tokens.RevokeAllForUser(ctx, rt.UserID, ip); err != nil {
		return ErrLogout
	}
	return nil
}

// SendVerificationCode issues (or regenerates) the 6-digit code for an
// email address and queues the delivery. Regeneration inside the cooldown
// window is refused.
func (s *AuthService) SendVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !entity.IsValidEmail(email) {
		return wrapDomain(entity.ErrInvalidEmailFormat)
	}

	code, err := helpers.SixDigitCode()
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	v, err := s.Codes.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		v = entity.NewEmailVerification(email, code, now)
	case err != nil:
		return err
	default:
		if !v.Regenerate(code, now) {
			return ErrWaitBeforeResend
		}
	}
	if err := s.Codes.Save(ctx, v); err != nil {
		return err
	}

	return s.enqueueMail(ctx, mailer.EmailJob{
		To:       email,
		Subject:  fmt.Sprintf("%s is your verification code", code),
		Template: "verification_code",
		Data:     map[string]any{"code": code},
	})
}

// VerifyCode checks a code without consuming it, so a client can validate
// the code step before submitting the full registration form.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	v, err := s.Codes.GetByEmail(ctx, email)
	if err != nil {
		return ErrInvalidCode
	}
	now := time.Now().UTC()
	if !v.IsActive(now) {
		return ErrCodeExpired
	}
	if v.Code != code {
		return ErrInvalidCode
	}
	return nil
}

// SendPasswordResetCode reuses the verification-code store for the reset
// flow. Unknown emails are reported as a failed reset rather than leaking
// which addresses exist.
func (s *AuthService) SendPasswordResetCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.Users.GetByEmail(ctx, email); err != nil {
		return ErrPasswordReset
	}

	code, err := helpers.SixDigitCode()
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	v, err := s.Codes.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		v = entity.NewEmailVerification(email, code, now)
	case err != nil:
		return err
	default:
		if !v.Regenerate(code, now) {
			return ErrWaitBeforeResend
		}
	}
	if err := s.Codes.Save(ctx, v); err != nil {
		return err
	}

	return s.enqueueMail(ctx, mailer.EmailJob{
		To:       email,
		Subject:  fmt.Sprintf("%s is your password reset code", code),
		Template: "password_reset_code",
		Data:     map[string]any{"code": code},
	})
}

// ResetPassword sets a new password after the email proved ownership with
// a code, then invalidates every outstanding refresh token.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return ErrPasswordReset
	}

	v, err := s.Codes.GetByEmail(ctx, email)
	if err != nil {
		return ErrInvalidCode
	}
	now := time.Now().UTC()
	if !v.IsActive(now) {
		return ErrCodeExpired
	}
	if v.Code != code {
		return ErrInvalidCode
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return ErrPasswordReset
	}
	u.ChangePassword(hash)
	if err := s.Users.Update(ctx, u); err != nil {
		return ErrUserUpdate
	}

	if err := s.Codes.Delete(ctx, email); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", email).Warn("verification code cleanup failed")
	}
	if _, err := s.Tokens.RevokeAllForUser(ctx, u.ID, ""); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("token revocation after reset failed")
	}
	if err := s.Guard.Reset(ctx, email); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("login guard unavailable")
	}

	s.publish(ctx, event.NewProfileUpdated(u.ID, "password"))
	return nil
}

// SendEmailConfirmation stores a one-shot opaque token and mails a
// confirmation link. Already confirmed accounts are a no-op.
func (s *AuthService) SendEmailConfirmation(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}
	if u.EmailConfirmed {
		return nil
	}

	token, err := helpers.OpaqueToken(confirmTokenBytes)
	if err != nil {
		return err
	}
	if err := s.Confirm.Put(ctx, token, u.ID, confirmLinkTTL); err != nil {
		return err
	}

	return s.enqueueMail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: "confirm_link",
		Data: map[string]any{
			"username": u.Username,
			"link":     s.ConfirmEmailURL + "?token=" + token,
		},
	})
}

// ConfirmEmail consumes a confirmation-link token and marks the account's
// email as confirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmailConfirmation
	}
	uid, found, err := s.Confirm.Get(ctx, token)
	if err != nil || !found {
		return ErrEmailConfirmation
	}
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		return ErrEmailConfirmation
	}
	if ev := u.ConfirmEmail(); ev != nil {
		if err := s.Users.Update(ctx, u); err != nil {
			return ErrUserUpdate
		}
		s.publish(ctx, ev)
	}
	if err := s.Confirm.Del(ctx, token); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("confirmation token cleanup failed")
	}
	return nil
}

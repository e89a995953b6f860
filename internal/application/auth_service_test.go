package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
	"github.com/oksasatya/tiktok-clone-auth/pkg/mailer"
)

const testPassword = "s3cret-password"

type authFixture struct {
	svc     *AuthService
	users   *memUsers
	tokens  *memTokens
	codes   *memCodes
	guard   *memGuard
	events  *memPublisher
	mail    *memPublisher
	confirm *memConfirm
	index   *memIndexer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:   newMemUsers(),
		tokens:  newMemTokens(),
		codes:   newMemCodes(),
		guard:   newMemGuard(5),
		events:  &memPublisher{},
		mail:    &memPublisher{},
		confirm: newMemConfirm(),
		index:   &memIndexer{},
	}
	f.svc = &AuthService{
		Users:           f.users,
		Tokens:          f.tokens,
		Codes:           f.codes,
		JWT:             helpers.NewJWTManager("test-secret", "auth-test", 15*time.Minute),
		Guard:           f.guard,
		Events:          f.events,
		Mail:            f.mail,
		Confirm:         f.confirm,
		Index:           f.index,
		RefreshTTL:      7 * 24 * time.Hour,
		ConfirmEmailURL: "http://localhost/confirm-email",
	}
	return f
}

func (f *authFixture) seedUser(t *testing.T, email string, confirmed bool) *entity.User {
	t.Helper()
	u, _, err := entity.NewUser(email, "seed_"+email[:4], time.Now().UTC().AddDate(-20, 0, 0))
	require.NoError(t, err)
	hash, err := helpers.HashPassword(testPassword)
	require.NoError(t, err)
	u.ChangePassword(hash)
	if confirmed {
		u.ConfirmEmail()
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)

	u, pair, err := f.svc.Login(ctx, " Jane@Example.com ", testPassword, "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotNil(t, u.LastLoginAt)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	stored, err := f.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.UserID)
	assert.Equal(t, "10.0.0.1", stored.CreatedByIP)
	assert.True(t, stored.IsActive())

	claims, err := f.svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)

	assert.Contains(t, f.events.eventNames(), "user.logged_in")
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)

	_, _, err := f.svc.Login(ctx, "jane@example.com", "wrong", "")
	assertCode(t, err, "INVALID_CREDENTIALS")
}

func TestLoginByUsername(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", true)

	got, pair, err := f.svc.Login(ctx, " "+strings.ToUpper(u.Username)+" ", testPassword, "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Login(context.Background(), "ghost@example.com", testPassword, "")
	assertCode(t, err, "INVALID_CREDENTIALS")
}

func TestLoginLockout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)

	for i := 0; i < 4; i++ {
		_, _, err := f.svc.Login(ctx, "jane@example.com", "wrong", "")
		assertCode(t, err, "INVALID_CREDENTIALS")
	}
	// fifth failure trips the lock
	_, _, err := f.svc.Login(ctx, "jane@example.com", "wrong", "")
	assertCode(t, err, "ACCOUNT_LOCKED")

	// correct password is refused while locked
	_, _, err = f.svc.Login(ctx, "jane@example.com", testPassword, "")
	assertCode(t, err, "ACCOUNT_LOCKED")
}

func TestLoginResetsCounterOnSuccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)

	for i := 0; i < 3; i++ {
		_, _, _ = f.svc.Login(ctx, "jane@example.com", "wrong", "")
	}
	_, _, err := f.svc.Login(ctx, "jane@example.com", testPassword, "")
	require.NoError(t, err)

	// counter restarted, so four more failures still stay short of the lock
	for i := 0; i < 4; i++ {
		_, _, err = f.svc.Login(ctx, "jane@example.com", "wrong", "")
		assertCode(t, err, "INVALID_CREDENTIALS")
	}
}

func TestLoginUnconfirmedEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", false)

	_, _, err := f.svc.Login(ctx, "jane@example.com", testPassword, "")
	assertCode(t, err, "EMAIL_NOT_CONFIRMED")
	assert.Equal(t, 0, f.tokens.activeFor(u.ID), "no session is issued")
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, f.codes.Save(ctx, entity.NewEmailVerification("new@example.com", "482913", now)))

	u, pair, err := f.svc.Register(ctx, RegisterInput{
		Email:     "New@Example.com",
		Password:  testPassword,
		Code:      "482913",
		BirthDate: now.AddDate(-16, 0, 0),
	})
	require.NoError(t, err)
	require.NotNil(t, u)

	assert.Equal(t, "new@example.com", u.Email)
	assert.True(t, u.EmailConfirmed)
	assert.Regexp(t, `^user[0-9a-f]{12}$`, u.Username)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = f.codes.GetByEmail(ctx, "new@example.com")
	assert.Error(t, err, "code is consumed")

	names := f.events.eventNames()
	assert.Contains(t, names, "user.created")
	assert.Contains(t, names, "user.email_confirmed")

	// welcome mail queued
	require.NotEmpty(t, f.mail.messages)
	job, ok := f.mail.messages[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "welcome", job.Template)

	stored, err := f.users.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, testPassword))

	// new account is searchable right away, not only after a profile edit
	assert.Equal(t, []string{u.ID}, f.index.indexedIDs())
}

func TestRegisterRejectsBadCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	in := RegisterInput{Email: "new@example.com", Password: testPassword, BirthDate: now.AddDate(-16, 0, 0)}

	in.Code = "000000"
	_, _, err := f.svc.Register(ctx, in)
	assertCode(t, err, "INVALID_VERIFICATION_CODE")

	require.NoError(t, f.codes.Save(ctx, entity.NewEmailVerification("new@example.com", "482913", now.Add(-49*time.Hour))))
	in.Code = "482913"
	_, _, err = f.svc.Register(ctx, in)
	assertCode(t, err, "VERIFICATION_CODE_EXPIRED")
}

func TestRegisterRejectsUsedEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)
	now := time.Now().UTC()
	require.NoError(t, f.codes.Save(ctx, entity.NewEmailVerification("jane@example.com", "482913", now)))

	_, _, err := f.svc.Register(ctx, RegisterInput{
		Email:     "jane@example.com",
		Password:  testPassword,
		Code:      "482913",
		BirthDate: now.AddDate(-16, 0, 0),
	})
	assertCode(t, err, "EMAIL_USED")
}

func TestRegisterRejectsUnderage(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, f.codes.Save(ctx, entity.NewEmailVerification("kid@example.com", "482913", now)))

	_, _, err := f.svc.Register(ctx, RegisterInput{
		Email:     "kid@example.com",
		Password:  testPassword,
		Code:      "482913",
		BirthDate: now.AddDate(-11, 0, 0),
	})
	assertCode(t, err, "INVALID_BIRTH_DATE")
}

func TestRefreshRotation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)
	_, pair, err := f.svc.Login(ctx, "jane@example.com", testPassword, "10.0.0.1")
	require.NoError(t, err)

	u2, pair2, err := f.svc.Refresh(ctx, pair.RefreshToken, "10.0.0.2")
	require.NoError(t, err)
	require.NotNil(t, u2)
	assert.NotEqual(t, pair.RefreshToken, pair2.RefreshToken)
	assert.NotEmpty(t, pair2.AccessToken)

	old, err := f.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, old.IsRevoked())
	assert.Equal(t, pair2.RefreshToken, old.ReplacedByToken)
	assert.Equal(t, "10.0.0.2", old.RevokedByIP)

	fresh, err := f.tokens.GetByToken(ctx, pair2.RefreshToken)
	require.NoError(t, err)
	assert.True(t, fresh.IsActive())
}

func TestRefreshReuseRevokesFamily(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", true)
	_, pair, err := f.svc.Login(ctx, "jane@example.com", testPassword, "")
	require.NoError(t, err)

	_, pair2, err := f.svc.Refresh(ctx, pair.RefreshToken, "")
	require.NoError(t, err)

	// replaying the rotated-out token invalidates everything
	_, _, err = f.svc.Refresh(ctx, pair.RefreshToken, "")
	assertCode(t, err, "INVALID_REFRESH_TOKEN")
	assert.Equal(t, 0, f.tokens.activeFor(u.ID))

	_, _, err = f.svc.Refresh(ctx, pair2.RefreshToken, "")
	assertCode(t, err, "INVALID_REFRESH_TOKEN")
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", true)

	rt := entity.NewRefreshToken("expired-token", u.ID, time.Hour, "")
	rt.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.tokens.Create(ctx, rt))

	_, _, err := f.svc.Refresh(ctx, "expired-token", "")
	assertCode(t, err, "TOKEN_EXPIRED")
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Refresh(context.Background(), "no-such-token", "")
	assertCode(t, err, "INVALID_REFRESH_TOKEN")

	_, _, err = f.svc.Refresh(context.Background(), "", "")
	assertCode(t, err, "INVALID_REFRESH_TOKEN")
}

// The stored refresh token must be the opaque value, never the signed
// access token.
func TestRefreshTokenIsOpaque(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)

	_, pair, err := f.svc.Login(ctx, "jane@example.com", testPassword, "")
	require.NoError(t, err)

	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	_, err = f.svc.JWT.ParseAccessToken(pair.RefreshToken)
	assert.Error(t, err, "refresh token must not parse as a JWT")

	stored, err := f.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.Token)
	assert.NotEqual(t, pair.AccessToken, stored.Token)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", true)
	_, phone, err := f.svc.Login(ctx, "jane@example.com", testPassword, "10.0.0.1")
	require.NoError(t, err)
	_, laptop, err := f.svc.Login(ctx, "jane@example.com", testPassword, "10.0.0.2")
	require.NoError(t, err)
	require.Equal(t, 2, f.tokens.activeFor(u.ID))

	// logout from one device ends every session
	require.NoError(t, f.svc.Logout(ctx, phone.RefreshToken, "10.0.0.9"))
	assert.Equal(t, 0, f.tokens.activeFor(u.ID))

	stored, err := f.tokens.GetByToken(ctx, laptop.RefreshToken)
	require.NoError(t, err)
	assert.True(t, stored.IsRevoked())

	err = f.svc.Logout(ctx, phone.RefreshToken, "")
	assertCode(t, err, "LOGOUT_FAILED")

	err = f.svc.Logout(ctx, "unknown", "")
	assertCode(t, err, "LOGOUT_FAILED")
}

func TestEmailConfirmationFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", false)

	require.NoError(t, f.svc.SendEmailConfirmation(ctx, u.ID))

	token := f.confirm.anyToken()
	require.NotEmpty(t, token)

	require.NotEmpty(t, f.mail.messages)
	job, ok := f.mail.messages[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "confirm_link", job.Template)
	assert.Equal(t, "http://localhost/confirm-email?token="+token, job.Data["link"])

	require.NoError(t, f.svc.ConfirmEmail(ctx, token))

	stored, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmed)
	assert.Contains(t, f.events.eventNames(), "user.email_confirmed")

	// token is single shot
	err = f.svc.ConfirmEmail(ctx, token)
	assertCode(t, err, "EMAIL_CONFIRMATION_FAILED")
}

func TestConfirmEmailUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.ConfirmEmail(context.Background(), "no-such-token")
	assertCode(t, err, "EMAIL_CONFIRMATION_FAILED")

	err = f.svc.ConfirmEmail(context.Background(), "")
	assertCode(t, err, "EMAIL_CONFIRMATION_FAILED")
}

func TestSendEmailConfirmationAlreadyConfirmed(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", true)

	require.NoError(t, f.svc.SendEmailConfirmation(ctx, u.ID))
	assert.Equal(t, 0, f.confirm.size(), "no token is issued")
	assert.Empty(t, f.mail.messages)
}

func TestSendEmailConfirmationUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.SendEmailConfirmation(context.Background(), "missing-id")
	assertCode(t, err, "USER_NOT_FOUND")
}

func TestSendVerificationCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendVerificationCode(ctx, "new@example.com"))

	v, err := f.codes.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, v.Code)

	require.NotEmpty(t, f.mail.messages)
	job, ok := f.mail.messages[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "verification_code", job.Template)
	assert.Equal(t, v.Code+" is your verification code", job.Subject)

	// immediate resend hits the cooldown
	err = f.svc.SendVerificationCode(ctx, "new@example.com")
	assertCode(t, err, "WAIT_BEFORE_RESEND")
}

func TestSendVerificationCodeBadEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.SendVerificationCode(context.Background(), "not-an-email")
	assertCode(t, err, "INVALID_EMAIL_FORMAT")
	assert.Empty(t, f.mail.messages)
}

func TestSendVerificationCodeEnqueueFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.mail.err = errors.New("broker down")

	err := f.svc.SendVerificationCode(context.Background(), "new@example.com")
	assertCode(t, err, "EMAIL_SEND_FAILED")
}

func TestVerifyCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, f.codes.Save(ctx, entity.NewEmailVerification("new@example.com", "482913", now)))

	assert.NoError(t, f.svc.VerifyCode(ctx, "new@example.com", "482913"))

	err := f.svc.VerifyCode(ctx, "new@example.com", "000000")
	assertCode(t, err, "INVALID_VERIFICATION_CODE")

	err = f.svc.VerifyCode(ctx, "other@example.com", "482913")
	assertCode(t, err, "INVALID_VERIFICATION_CODE")
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "jane@example.com", true)
	_, _, err := f.svc.Login(ctx, "jane@example.com", testPassword, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.SendPasswordResetCode(ctx, "jane@example.com"))
	v, err := f.codes.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)

	const newPassword = "brand-new-secret"
	require.NoError(t, f.svc.ResetPassword(ctx, "jane@example.com", v.Code, newPassword))

	stored, err := f.users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.False(t, helpers.CompareHashAndPassword(stored.PasswordHash, testPassword))
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, newPassword))

	assert.Equal(t, 0, f.tokens.activeFor(u.ID), "outstanding sessions are revoked")

	_, err = f.codes.GetByEmail(ctx, "jane@example.com")
	assert.Error(t, err, "code is consumed")

	_, _, err = f.svc.Login(ctx, "jane@example.com", newPassword, "")
	assert.NoError(t, err)
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.SendPasswordResetCode(context.Background(), "ghost@example.com")
	assertCode(t, err, "PASSWORD_RESET_FAILED")

	err = f.svc.ResetPassword(context.Background(), "ghost@example.com", "482913", "whatever")
	assertCode(t, err, "PASSWORD_RESET_FAILED")
}

func TestResetPasswordWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.seedUser(t, "jane@example.com", true)
	require.NoError(t, f.svc.SendPasswordResetCode(ctx, "jane@example.com"))

	err := f.svc.ResetPassword(ctx, "jane@example.com", "000000", "whatever")
	assertCode(t, err, "INVALID_VERIFICATION_CODE")
}

package application

import (
	"errors"
	"net/http"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
)

// Error is a workflow failure with a stable code and an HTTP status hint.
// Handlers translate it into the response envelope without switching on
// individual sentinel values.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

func newError(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

var (
	ErrInvalidCredentials = newError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountLocked      = newError(http.StatusForbidden, "ACCOUNT_LOCKED", "too many failed attempts, try again later")
	ErrEmailNotConfirmed  = newError(http.StatusForbidden, "EMAIL_NOT_CONFIRMED", "email address has not been confirmed")
	ErrEmailUsed          = newError(http.StatusConflict, "EMAIL_USED", "email is already registered")
	ErrUsernameUsed       = newError(http.StatusConflict, "USERNAME_USED", "username is already taken")
	ErrInvalidRefresh     = newError(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "refresh token is invalid or revoked")
	ErrTokenExpired       = newError(http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired")
	ErrRegistration       = newError(http.StatusBadRequest, "REGISTRATION_FAILED", "registration failed")
	ErrEmailConfirmation  = newError(http.StatusBadRequest, "EMAIL_CONFIRMATION_FAILED", "email confirmation failed")
	ErrLogout             = newError(http.StatusBadRequest, "LOGOUT_FAILED", "logout failed")
	ErrPasswordReset      = newError(http.StatusBadRequest, "PASSWORD_RESET_FAILED", "password reset failed")
	ErrInvalidCode        = newError(http.StatusBadRequest, "INVALID_VERIFICATION_CODE", "verification code is incorrect")
	ErrCodeExpired        = newError(http.StatusBadRequest, "VERIFICATION_CODE_EXPIRED", "verification code has expired")
	ErrWaitBeforeResend   = newError(http.StatusTooManyRequests, "WAIT_BEFORE_RESEND", "wait before requesting another code")
	ErrEmailSend          = newError(http.StatusBadGateway, "EMAIL_SEND_FAILED", "could not send email")
	ErrUserNotFound       = newError(http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	ErrUserUpdate         = newError(http.StatusInternalServerError, "USER_UPDATE_FAILED", "could not update user")
	ErrUsernameChange     = newError(http.StatusBadRequest, "USERNAME_CHANGE_FAILED", "could not change username")
)

// wrapDomain converts a rule violation raised by an aggregate into a
// workflow error that keeps its code.
func wrapDomain(err error) error {
	var de *entity.DomainError
	if errors.As(err, &de) {
		return newError(http.StatusUnprocessableEntity, de.Code, de.Message)
	}
	return err
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tiktok-clone-auth/internal/application"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
	"github.com/oksasatya/tiktok-clone-auth/pkg/response"
	"github.com/oksasatya/tiktok-clone-auth/pkg/validation"
)

const birthDateLayout = "2006-01-02"

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// writeError translates workflow errors into the envelope. Anything that
// is not an application.Error is an internal failure.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var appErr *application.Error
	if errors.As(err, &appErr) {
		response.Error(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}
	if logger != nil {
		logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.Error(c, http.StatusInternalServerError, "UNEXPECTED_ERROR", "something went wrong")
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	Code      string `json:"code" binding:"required,len=6,numeric"`
	BirthDate string `json:"birth_date" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "birth_date must be YYYY-MM-DD")
		return
	}

	u, pair, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Code:      req.Code,
		BirthDate: birthDate,
		IP:        clientIP(c),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	h.Cookies.SetRefreshToken(c, pair.RefreshToken, pair.RefreshExpiry)
	response.Success(c, http.StatusCreated, "account created", gin.H{
		"user":              profileBody(u),
		"access_token":      pair.AccessToken,
		"access_expires_at": pair.AccessExpiry,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required_without=Username,omitempty,email"`
	Username string `json:"username" binding:"required_without=Email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), identifier, req.Password, clientIP(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	h.Cookies.SetRefreshToken(c, pair.RefreshToken, pair.RefreshExpiry)
	response.Success(c, http.StatusOK, "login successful", gin.H{
		"user":              profileBody(u),
		"access_token":      pair.AccessToken,
		"access_expires_at": pair.AccessExpiry,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh POST /api/auth/refresh
// The token comes from the cookie when present, else from the body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.Cookies.RefreshToken(c)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	u, pair, err := h.Svc.Refresh(c.Request.Context(), token, clientIP(c))
	if err != nil {
		h.Cookies.Clear(c)
		writeError(c, h.Logger, err)
		return
	}

	h.Cookies.SetRefreshToken(c, pair.RefreshToken, pair.RefreshExpiry)
	response.Success(c, http.StatusOK, "token refreshed", gin.H{
		"user":              profileBody(u),
		"access_token":      pair.AccessToken,
		"access_expires_at": pair.AccessExpiry,
	})
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := h.Cookies.RefreshToken(c)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if err := h.Svc.Logout(c.Request.Context(), token, clientIP(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, "logged out", gin.H{"logged_out": true})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendVerificationCode POST /api/auth/verification/send
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	if err := h.Svc.SendVerificationCode(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "verification code sent", gin.H{"sent": true})
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// VerifyCode POST /api/auth/verification/verify
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	if err := h.Svc.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "code accepted", gin.H{"valid": true})
}

// SendEmailConfirmation POST /api/auth/confirm/send (auth required)
func (h *AuthHandler) SendEmailConfirmation(c *gin.Context) {
	uid := c.GetString("userID")
	if uid == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "unauthorized")
		return
	}
	if err := h.Svc.SendEmailConfirmation(c.Request.Context(), uid); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "confirmation email sent", gin.H{"sent": true})
}

type confirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmEmail POST /api/auth/confirm
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	if err := h.Svc.ConfirmEmail(c.Request.Context(), req.Token); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "email confirmed", gin.H{"confirmed": true})
}

// ForgotPassword POST /api/auth/password/forgot
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	if err := h.Svc.SendPasswordResetCode(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "reset code sent", gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ResetPassword POST /api/auth/password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "password updated", gin.H{"reset": true})
}

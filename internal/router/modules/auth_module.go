package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tiktok-clone-auth/internal/container"
	handlers "github.com/oksasatya/tiktok-clone-auth/internal/interface/http"
	"github.com/oksasatya/tiktok-clone-auth/internal/interface/middleware"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
)

type AuthModule struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
	JWT   *helpers.JWTManager
}

func NewAuthModule(auth *handlers.AuthHandler, users *handlers.UserHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Auth: auth, Users: users, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Tight limits on the credential and code endpoints, looser on refresh.
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	codeLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", loginLimiter, m.Auth.Register)
		auth.POST("/login", loginLimiter, m.Auth.Login)
		auth.POST("/refresh", refreshLimiter, m.Auth.Refresh)
		auth.POST("/logout", refreshLimiter, m.Auth.Logout)

		auth.POST("/verification/send", codeLimiter, m.Auth.SendVerificationCode)
		auth.POST("/verification/verify", codeLimiter, m.Auth.VerifyCode)
		auth.POST("/confirm", codeLimiter, m.Auth.ConfirmEmail)

		auth.POST("/password/forgot", codeLimiter, m.Auth.ForgotPassword)
		auth.POST("/password/reset", codeLimiter, m.Auth.ResetPassword)

		// onboarding helpers used before the client holds a token
		auth.POST("/birthdate/check", codeLimiter, m.Users.CheckBirthDate)
		auth.POST("/onboarding/username", codeLimiter, m.Users.ChangeUsernameByEmail)
	}

	// confirmation resend requires a valid access token
	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(m.JWT))
	protected.Use(middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByUserID(), nil))
	{
		protected.POST("/confirm/send", m.Auth.SendEmailConfirmation)
	}
}

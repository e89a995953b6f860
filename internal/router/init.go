package router

import (
	"github.com/oksasatya/tiktok-clone-auth/internal/application"
	"github.com/oksasatya/tiktok-clone-auth/internal/container"
	pginfra "github.com/oksasatya/tiktok-clone-auth/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/tiktok-clone-auth/internal/interface/http"
	"github.com/oksasatya/tiktok-clone-auth/internal/router/modules"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
)

func buildServices() (*application.AuthService, *application.UserService) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	tokens := pginfra.NewRefreshTokenRepository(pool)
	codes := pginfra.NewEmailVerificationRepository(pool)

	var events application.EventPublisher
	if p := container.GetEventPub(); p != nil {
		events = p
	}
	var mail application.EventPublisher
	if p := container.GetMailPub(); p != nil {
		mail = p
	}

	userSvc := &application.UserService{
		Users:        users,
		Events:       events,
		Logger:       container.GetLogger(),
		GCS:          container.GetGCS(),
		GCSBucket:    cfg.GCSBucket,
		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,
	}

	authSvc := &application.AuthService{
		Users:           users,
		Tokens:          tokens,
		Codes:           codes,
		JWT:             container.GetJWT(),
		Guard:           container.GetLockout(),
		Events:          events,
		Mail:            mail,
		Confirm:         helpers.NewConfirmTokenStore(container.GetRedis()),
		Index:           userSvc,
		Logger:          container.GetLogger(),
		RefreshTTL:      cfg.RefreshTTL,
		ConfirmEmailURL: cfg.ConfirmEmailURL,
	}
	return authSvc, userSvc
}

// InitModules initializes all application modules and registers them with
// the router registry. Call once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	authSvc, userSvc := buildServices()

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, userHandler, container.GetJWT()))
	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

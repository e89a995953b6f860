package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tiktok-clone-auth/internal/container"
	handlers "github.com/oksasatya/tiktok-clone-auth/internal/interface/http"
	"github.com/oksasatya/tiktok-clone-auth/internal/interface/middleware"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Public reads
	public := rg.Group("/user")
	public.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil))
	{
		public.GET("/by-username/:username", m.Handler.GetByUsername)
		public.GET("/username/check", m.Handler.CheckUsername)
	}

	// Owner operations
	auth := rg.Group("/user")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/me", m.Handler.Me)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PATCH("/name", m.Handler.ChangeName)
		auth.PATCH("/bio", m.Handler.ChangeBio)
		auth.PATCH("/avatar", m.Handler.ChangeAvatar)
		auth.PATCH("/username", m.Handler.ChangeUsername)
		auth.POST("/avatar/upload", m.Handler.UploadAvatar)
		auth.GET("/search", m.Handler.Search)
	}

	// Badge management is internal only
	internalOnly := rg.Group("/user")
	internalOnly.Use(middleware.Auth(m.JWT))
	internalOnly.Use(middleware.RequirePrivateIP())
	{
		internalOnly.POST("/:id/verify", m.Handler.Verify)
		internalOnly.POST("/:id/unverify", m.Handler.UnVerify)
	}
}

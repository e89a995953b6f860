package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
	"github.com/oksasatya/tiktok-clone-auth/pkg/response"
)

// Auth validates the Bearer access token and puts the identity claims into
// the Gin context. Token state lives entirely in the JWT; no session
// lookup happens here.
func Auth(jwtm *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "missing access token")
			c.Abort()
			return
		}
		claims, err := jwtm.ParseAccessToken(token)
		if err != nil {
			code := "INVALID_CREDENTIALS"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
			}
			response.Error(c, http.StatusUnauthorized, code, "invalid access token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userName", claims.Name)
		c.Set("userEmail", claims.Email)
		c.Set("claims", claims)
		c.Next()
	}
}

package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tiktok-clone-auth/pkg/response"
)

func isPrivateIP(raw string) bool {
	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}
	// 10.0.0.0/8, 172.16/12, 192.168/16, loopback
	return ip.IsLoopback() || ip.IsPrivate()
}

// AllowPrivateIP bypasses a rate limit for requests coming from inside
// the network.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		return isPrivateIP(ipFromCtx(c))
	}
}

// RequirePrivateIP rejects requests from outside the network. Used for
// operational endpoints like verified-badge management.
func RequirePrivateIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isPrivateIP(ipFromCtx(c)) {
			response.Error(c, http.StatusForbidden, "INVALID_CREDENTIALS", "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

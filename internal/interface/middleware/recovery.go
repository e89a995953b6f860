package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tiktok-clone-auth/pkg/response"
)

// Recovery turns panics into a uniform 500 envelope instead of a closed
// connection.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"panic": r,
						"path":  c.FullPath(),
					}).Error("panic recovered")
				}
				response.Error(c, http.StatusInternalServerError, "UNEXPECTED_ERROR", "something went wrong")
				c.Abort()
			}
		}()
		c.Next()
	}
}

package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Manager writes the refresh-token cookie. Access tokens travel in the
// response body and the Authorization header, never in a cookie.
type Manager struct {
	Domain string
	Secure bool
}

const refreshCookieName = "refresh_token"

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetRefreshToken stores the opaque refresh token as an HttpOnly cookie
// scoped to the refresh endpoint's path.
func (m *Manager) SetRefreshToken(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// RefreshToken reads the refresh token cookie, or "" when absent.
func (m *Manager) RefreshToken(c *gin.Context) string {
	v, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return v
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}

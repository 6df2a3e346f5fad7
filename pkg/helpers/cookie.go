package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieManager writes the session cookie. It is always HttpOnly and SameSite=Strict.
type CookieManager struct {
	Name   string
	Domain string
	Secure bool
}

func NewCookie(name, domain string, secure bool) *CookieManager {
	return &CookieManager{Name: name, Domain: domain, Secure: secure}
}

func (m *CookieManager) Set(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.Name, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// Clear overwrites the session cookie with an already expired one.
func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.Name, "", -1, "/", m.Domain, m.Secure, true)
}

// Read returns the session token, or "" when the cookie is absent.
func (m *CookieManager) Read(c *gin.Context) string {
	v, err := c.Cookie(m.Name)
	if err != nil {
		return ""
	}
	return v
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}

package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
	"github.com/oksasatya/interview-tracker/pkg/response"
)

const (
	// PrincipalKey holds the authenticated *entity.Interviewer.
	PrincipalKey = "principal"
	// UserIDKey holds the principal's id; the per-user rate limiter keys on it.
	UserIDKey = "userID"
)

// Authenticator resolves a session token into an interviewer.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Interviewer, error)
}

// Auth reads the session cookie and rejects the request unless it resolves to an
// existing interviewer. Every failure gets the same 401 body.
func Auth(gate Authenticator, cookies *helpers.CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.Read(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Not authorized", nil)
			return
		}
		principal, err := gate.Authenticate(c.Request.Context(), token)
		if err != nil || principal == nil {
			response.Error(c, http.StatusUnauthorized, "Not authorized", nil)
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(UserIDKey, principal.ID)
		c.Next()
	}
}

// Principal returns the interviewer attached by Auth, or nil.
func Principal(c *gin.Context) *entity.Interviewer {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*entity.Interviewer)
	return p
}

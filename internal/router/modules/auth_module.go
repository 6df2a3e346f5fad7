package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/interview-tracker/internal/interface/http"
	"github.com/oksasatya/interview-tracker/internal/interface/middleware"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
)

// JSONBodyLimit caps every JSON request body.
const JSONBodyLimit = 16 << 10

// AuthModule mounts /auth/*.
// Public: POST register, login, logout. Protected: GET/PATCH profile.
type AuthModule struct {
	Handler *handlers.InterviewerHandler
	Gate    middleware.Authenticator
	Cookies *helpers.CookieManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.InterviewerHandler, gate middleware.Authenticator, cookies *helpers.CookieManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Gate: gate, Cookies: cookies, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.Use(middleware.BodyLimit(JSONBodyLimit))

	// 10 req/min per IP and route for credential endpoints
	credLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	auth.POST("/register", credLimiter, m.Handler.Register)
	auth.POST("/login", credLimiter, m.Handler.Login)
	auth.POST("/logout", m.Handler.Logout)

	protected := auth.Group("")
	protected.Use(
		middleware.Auth(m.Gate, m.Cookies),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		protected.GET("/profile", m.Handler.Profile)
		protected.PATCH("/profile", m.Handler.UpdateProfile)
	}
}

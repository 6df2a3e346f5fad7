package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/interview-tracker/internal/application"
	handlers "github.com/oksasatya/interview-tracker/internal/interface/http"
	"github.com/oksasatya/interview-tracker/internal/interface/middleware"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
)

// multipart framing on top of the resume itself
const resumeBodyLimit = application.MaxResumeBytes + 64<<10

// CandidateModule mounts /candidate/*; every route requires a session.
type CandidateModule struct {
	Handler *handlers.CandidateHandler
	Gate    middleware.Authenticator
	Cookies *helpers.CookieManager
	Redis   *redis.Client
}

func NewCandidateModule(h *handlers.CandidateHandler, gate middleware.Authenticator, cookies *helpers.CookieManager, rdb *redis.Client) *CandidateModule {
	return &CandidateModule{Handler: h, Gate: gate, Cookies: cookies, Redis: rdb}
}

func (m *CandidateModule) Register(rg *gin.RouterGroup) {
	cand := rg.Group("/candidate")
	cand.Use(
		middleware.Auth(m.Gate, m.Cookies),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)

	jsonLimit := middleware.BodyLimit(JSONBodyLimit)
	cand.POST("", jsonLimit, m.Handler.Create)
	cand.GET("", m.Handler.List)
	// static segments before /:id
	cand.GET("/all", m.Handler.ListAll)
	cand.GET("/search", m.Handler.Search)
	cand.GET("/:id", m.Handler.Get)
	cand.PATCH("/:id", jsonLimit, m.Handler.Update)
	cand.DELETE("/:id", m.Handler.Delete)
	cand.POST("/:id/resume", middleware.BodyLimit(resumeBodyLimit), m.Handler.UploadResume)
}

package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/internal/application"
	"github.com/oksasatya/interview-tracker/internal/container"
	"github.com/oksasatya/interview-tracker/internal/infrastructure/search"
	handlers "github.com/oksasatya/interview-tracker/internal/interface/http"
	"github.com/oksasatya/interview-tracker/internal/router/modules"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
)

// Deps is everything the HTTP modules need.
type Deps struct {
	Interviewers *application.InterviewerService
	Candidates   *application.CandidateService
	Cookies      *helpers.CookieManager
	Redis        *redis.Client
	Metrics      prometheus.Gatherer
	Logger       logrus.FieldLogger
}

// BuildDeps wires services from the container singletons.
// Optional adapters are only attached when their client exists, so the
// service never sees a typed-nil interface.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	creds := application.NewCredentialStore(container.InterviewerRepository(), helpers.NewBcryptHasher(cfg.BcryptCost))
	interviewers := application.NewInterviewerService(creds, container.GetJWT(), logger)

	candidates := application.NewCandidateService(container.CandidateRepository(), logger)
	candidates.AppName = cfg.AppName
	candidates.ListAllRole = cfg.ListAllRole
	if es := container.GetES(); es != nil {
		candidates.Index = search.NewCandidateIndex(es, cfg.ESCandidatesIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		candidates.Events = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		candidates.Storage = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
	}

	d := Deps{
		Interviewers: interviewers,
		Candidates:   candidates,
		Cookies:      helpers.NewCookie(cfg.CookieName, cfg.CookieDomain, cfg.CookieSecure),
		Redis:        container.GetRedis(),
		Logger:       logger,
	}
	if reg := container.GetMetricsRegistry(); reg != nil {
		d.Metrics = reg
	}
	return d
}

// InitModules builds the handlers and registers every module.
// This function should be called once during application startup.
func InitModules(r *Registry, d Deps) {
	interviewerHandler := handlers.NewInterviewerHandler(d.Interviewers, d.Cookies, d.Logger)
	candidateHandler := handlers.NewCandidateHandler(d.Candidates, d.Logger)

	r.Add(modules.NewAuthModule(interviewerHandler, d.Interviewers, d.Cookies, d.Redis))
	r.Add(modules.NewCandidateModule(candidateHandler, d.Interviewers, d.Cookies, d.Redis))
	r.AddRoot(modules.NewSystemModule(d.Metrics, d.Redis))
}

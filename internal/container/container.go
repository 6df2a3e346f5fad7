package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/config"
	repo "github.com/oksasatya/interview-tracker/internal/domain/repository"
	"github.com/oksasatya/interview-tracker/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/interview-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router wires its modules from these singletons; optional clients stay nil when unconfigured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	memStore    *memory.Store
	redisClient *redis.Client
	gcsClient   *storage.Client
	registry    *prometheus.Registry

	jwtManager *helpers.JWTManager

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)                { cfg = c }
func GetConfig() *config.Config                 { return cfg }
func SetLogger(l *logrus.Logger)                { logger = l }
func GetLogger() *logrus.Logger                 { return logger }
func SetPGPool(p *pgxpool.Pool)                 { pgPool = p }
func GetPGPool() *pgxpool.Pool                  { return pgPool }
func SetMemoryStore(s *memory.Store)            { memStore = s }
func GetMemoryStore() *memory.Store             { return memStore }
func SetRedis(r *redis.Client)                  { redisClient = r }
func GetRedis() *redis.Client                   { return redisClient }
func SetGCS(s *storage.Client)                  { gcsClient = s }
func GetGCS() *storage.Client                   { return gcsClient }
func SetMetricsRegistry(r *prometheus.Registry) { registry = r }
func GetMetricsRegistry() *prometheus.Registry  { return registry }
func SetJWT(m *helpers.JWTManager)              { jwtManager = m }
func GetJWT() *helpers.JWTManager               { return jwtManager }
func SetRabbitPub(p *helpers.RabbitPublisher)   { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher    { return rabbitPub }
func SetES(c *elasticsearch.Client)             { esClient = c }
func GetES() *elasticsearch.Client              { return esClient }

// InterviewerRepository returns the Postgres repository when a pool is set, else the memory store's.
func InterviewerRepository() repo.InterviewerRepository {
	if pgPool != nil {
		return pginfra.NewInterviewerRepository(pgPool)
	}
	return memoryStore().Interviewers()
}

// CandidateRepository mirrors InterviewerRepository's backend choice.
func CandidateRepository() repo.CandidateRepository {
	if pgPool != nil {
		return pginfra.NewCandidateRepository(pgPool)
	}
	return memoryStore().Candidates()
}

func memoryStore() *memory.Store {
	if memStore == nil {
		memStore = memory.NewStore()
	}
	return memStore
}

package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the flattened environment of the API, the worker and the seeder.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Storage backend: postgres or memory
	Storage string

	// Postgres pool
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis (rate limiting); empty address disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Session tokens and password hashing
	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	CookieName   string
	CookieDomain string
	CookieSecure bool

	CORSAllowedOrigins string // comma-separated; empty reflects any origin

	// TrustedProxies lists peers (IPs or CIDRs) whose forwarding headers are believed.
	TrustedProxies string

	MigrationsDir string

	// Notification queue; empty URL disables publishing
	RabbitMQURL         string
	RabbitMQNotifyQueue string

	// Candidate search
	ElasticsearchAddrs    string // comma-separated
	ElasticsearchUser     string
	ElasticsearchPass     string
	ESCandidatesIndex     string
	ElasticsearchDisabled bool

	// Google Cloud Storage for resumes
	GCSBucket              string
	GCSCredentialsJSONPath string // empty means Application Default Credentials

	// Outgoing mail (worker only)
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	MailSendEnabled bool

	MetricsEnabled bool

	HTTPLogEnabled bool

	// ListAllRole restricts GET /api/candidate/all to a role when set
	ListAllRole string
}

// DevJWTSecret is the session key used when JWT_SECRET is unset. Only
// development may run with it.
const DevJWTSecret = "devsessionsecret"

// fromEnv parses key with parse, keeping def when the variable is unset or malformed.
func fromEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		log.Printf("config: %s=%q is not valid (%v), using %v", key, raw, err, def)
		return def
	}
	return v
}

func str(key, def string) string {
	return fromEnv(key, def, func(s string) (string, error) { return s, nil })
}

func flag(key string, def bool) bool { return fromEnv(key, def, strconv.ParseBool) }

func num(key string, def int) int { return fromEnv(key, def, strconv.Atoi) }

func dur(key string, def time.Duration) time.Duration {
	return fromEnv(key, def, time.ParseDuration)
}

// Load reads the process environment. Every key has a local-development default.
func Load() *Config {
	return &Config{
		AppName: str("APP_NAME", "interview-tracker"),
		Env:     str("APP_ENV", "development"),
		Port:    str("PORT", "9000"),
		GinMode: str("GIN_MODE", "release"),

		Storage: strings.ToLower(str("STORAGE", "postgres")),

		DBHost:        str("DB_HOST", "localhost"),
		DBPort:        str("DB_PORT", "5432"),
		DBUser:        str("DB_USER", "postgres"),
		DBPassword:    str("DB_PASSWORD", "postgres"),
		DBName:        str("DB_NAME", "interviews"),
		DBSSLMode:     str("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(num("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(num("DB_MIN_CONNS", 2)),
		DBMaxConnLife: dur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     str("REDIS_ADDR", ""),
		RedisPassword: str("REDIS_PASSWORD", ""),
		RedisDB:       num("REDIS_DB", 0),

		JWTSecret:  str("JWT_SECRET", DevJWTSecret),
		SessionTTL: dur("SESSION_TTL", 7*24*time.Hour),
		BcryptCost: num("BCRYPT_COST", 10),

		CookieName:   str("COOKIE_NAME", "token"),
		CookieDomain: str("COOKIE_DOMAIN", ""),
		CookieSecure: flag("COOKIE_SECURE", false),

		CORSAllowedOrigins: str("CORS_ALLOWED_ORIGINS", ""),
		TrustedProxies:     str("TRUSTED_PROXIES", ""),

		MigrationsDir: str("MIGRATIONS_DIR", "db/migrations"),

		RabbitMQURL:         str("RABBITMQ_URL", ""),
		RabbitMQNotifyQueue: str("RABBITMQ_NOTIFY_QUEUE", "candidate_notifications"),

		ElasticsearchAddrs:    str("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:     str("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:     str("ELASTICSEARCH_PASSWORD", ""),
		ESCandidatesIndex:     str("ES_CANDIDATES_INDEX", "candidates"),
		ElasticsearchDisabled: flag("ELASTICSEARCH_DISABLED", false),

		GCSBucket:              str("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: str("GCS_CREDENTIALS_JSON", ""),

		MailgunDomain: str("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: str("MAILGUN_API_KEY", ""),
		MailgunSender: str("MAILGUN_SENDER", ""),

		MailSendEnabled: flag("MAIL_SEND_ENABLED", false),

		MetricsEnabled: flag("METRICS_ENABLED", true),

		HTTPLogEnabled: flag("HTTP_LOG_ENABLED", false),

		ListAllRole: str("LIST_ALL_ROLE", ""),
	}
}

// PostgresDSN renders the pgx connection URL with credentials escaped.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// Validate rejects settings that are only safe on a developer machine.
func (c *Config) Validate() error {
	if c.Env != "development" && (c.JWTSecret == "" || c.JWTSecret == DevJWTSecret) {
		return fmt.Errorf("config: JWT_SECRET must be set when APP_ENV=%s", c.Env)
	}
	return nil
}

func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

// SearchEnabled reports whether an Elasticsearch cluster is configured.
func (c *Config) SearchEnabled() bool {
	return !c.ElasticsearchDisabled && len(c.ESAddrs()) > 0
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

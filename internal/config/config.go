package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	PolicyPrepend = "prepend"
	PolicyAppend  = "append"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request handler timeout
	MaxBodyBytes    int64         // JSON request body cap

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Database
	DBDriver          string        // "sqlite" | "postgres"
	DBDSN             string        // driver-specific DSN
	DBMaxOpenConns    int           // 0 = driver default
	DBMaxIdleConns    int           // 0 = driver default
	DBConnMaxLifetime time.Duration // 0 = no limit
	DBConnectTimeout  time.Duration // total time to retry the first ping (ex: 30s)
	DBRetryInterval   time.Duration // initial wait between retries, doubles up to DBMaxWait
	DBMaxWait         time.Duration // max wait between retries
	DBPingTimeout     time.Duration // timeout for each ping attempt
	DBWarnThreshold   int           // warn after this many attempts
	DBSlowQuery       time.Duration // gorm queries slower than this are logged at warn

	// Catalog behaviour
	AdminCredentialHash  string // bcrypt hash of the admin credential
	EditCredentialHash   string // bcrypt hash of the edit credential
	InsertionPolicy      string // "prepend" | "append"
	ReorderAtomic        bool   // true => bulk reorder runs in one transaction
	ThumbnailPlaceholder string // base URL for generated thumbnails, webpage name is appended

	// Redis (optional, empty addr disables the moderation log)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration
	RedisPingTimeout    time.Duration
	RedisPoolSize       int
	RedisConnectTimeout time.Duration
	RedisRetryInterval  time.Duration
	RedisWarnThreshold  int
	AuditStream         string // stream key for moderation events
	AuditMaxLen         int64  // approximate cap on stream length

	// Background jobs
	SeedFile      string        // optional YAML file of curated cards
	SeedInterval  time.Duration // 0 = import once at startup only
	PurgeInterval time.Duration // 0 = purger disabled
	PurgeAfter    time.Duration // hidden cards older than this are hard-deleted

	// Access restrictions
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict admin routes to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // allowed browser origins, empty = same-origin only

	RateBurst  int // requests allowed in a burst on public write routes
	RatePerMin int // refill rate per client IP
}

// Load reads the configuration from the environment (and a .env file when
// present). It panics on missing or invalid settings.
func Load() *Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CARDS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CARDS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("CARDS_REQUEST_TIMEOUT", 10*time.Second),
		MaxBodyBytes:    int64(getenvInt("CARDS_MAX_BODY_BYTES", 1<<20)),

		// Logging
		LogLevel:  getenv("CARDS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CARDS_PRETTY_LOG", true),

		// Database
		DBDriver:          strings.ToLower(getenv("CARDS_DB_DRIVER", DriverSqlite)),
		DBDSN:             getenv("CARDS_DB_DSN", "cardshelf.db?_journal_mode=WAL&_busy_timeout=5000"),
		DBMaxOpenConns:    getenvInt("CARDS_DB_MAX_OPEN_CONNS", 0),
		DBMaxIdleConns:    getenvInt("CARDS_DB_MAX_IDLE_CONNS", 0),
		DBConnMaxLifetime: mustDuration("CARDS_DB_CONN_MAX_LIFETIME", 0),
		DBConnectTimeout:  mustDuration("CARDS_DB_CONNECT_TIMEOUT", 30*time.Second),
		DBRetryInterval:   mustDuration("CARDS_DB_RETRY_INTERVAL", 2*time.Second),
		DBMaxWait:         mustDuration("CARDS_DB_MAX_WAIT", 10*time.Second),
		DBPingTimeout:     mustDuration("CARDS_DB_PING_TIMEOUT", 5*time.Second),
		DBWarnThreshold:   getenvInt("CARDS_DB_WARN_THRESHOLD", 3),
		DBSlowQuery:       mustDuration("CARDS_DB_SLOW_QUERY", 500*time.Millisecond),

		// Catalog
		AdminCredentialHash:  requireEnv("CARDS_ADMIN_CREDENTIAL_HASH"),
		EditCredentialHash:   requireEnv("CARDS_EDIT_CREDENTIAL_HASH"),
		InsertionPolicy:      strings.ToLower(getenv("CARDS_INSERTION_POLICY", PolicyPrepend)),
		ReorderAtomic:        mustBool("CARDS_REORDER_ATOMIC", true),
		ThumbnailPlaceholder: getenv("CARDS_THUMBNAIL_PLACEHOLDER", "https://via.placeholder.com/400x300?text="),

		// Redis settings
		RedisAddr:           getenv("CARDS_REDIS_ADDR", ""),
		RedisUser:           getenv("CARDS_REDIS_USERNAME", ""),
		RedisPassword:       getenv("CARDS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CARDS_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		AuditStream:         getenv("CARDS_AUDIT_STREAM", "cardshelf:moderation"),
		AuditMaxLen:         int64(getenvInt("CARDS_AUDIT_MAX_LEN", 10000)),

		// Background jobs
		SeedFile:      getenv("CARDS_SEED_FILE", ""),
		SeedInterval:  mustDuration("CARDS_SEED_INTERVAL", 0),
		PurgeInterval: mustDuration("CARDS_PURGE_INTERVAL", 0),
		PurgeAfter:    mustDuration("CARDS_PURGE_AFTER", 90*24*time.Hour),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("CARDS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("CARDS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("CARDS_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("CARDS_CORS_ORIGINS", "")),

		RateBurst:  getenvInt("CARDS_RATE_BURST", 20),
		RatePerMin: getenvInt("CARDS_RATE_PER_MIN", 30),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks enum values and cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverSqlite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("CARDS_DB_DRIVER must be %q or %q, got %q", DriverSqlite, DriverPostgres, c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("CARDS_DB_DSN must not be empty"))
	}
	switch c.InsertionPolicy {
	case PolicyPrepend, PolicyAppend:
	default:
		errs = append(errs, fmt.Errorf("CARDS_INSERTION_POLICY must be %q or %q, got %q", PolicyPrepend, PolicyAppend, c.InsertionPolicy))
	}
	if c.PurgeInterval > 0 && c.PurgeAfter <= 0 {
		errs = append(errs, errors.New("CARDS_PURGE_AFTER must be > 0 when the purger is enabled"))
	}
	if c.SeedInterval < 0 || c.PurgeInterval < 0 {
		errs = append(errs, errors.New("job intervals must not be negative"))
	}
	return errors.Join(errs...)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	const mask = "***REDACTED***"
	cp.AdminCredentialHash = mask
	cp.EditCredentialHash = mask
	if cp.RedisPassword != "" {
		cp.RedisPassword = mask
	}
	if cp.DBDriver == DriverPostgres {
		cp.DBDSN = mask
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

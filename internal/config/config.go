// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Supported values for USER_DELETE_POLICY.
const (
	DeletePolicyOrphan  = "orphan"
	DeletePolicyCascade = "cascade"
)

// Supported values for SEARCH_BACKEND.
const (
	SearchBackendStore         = "store"
	SearchBackendElasticsearch = "elasticsearch"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode            string        `mapstructure:"GIN_MODE"`
	ServerHost         string        `mapstructure:"SERVER_HOST"`
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	ServerTimeout      time.Duration `mapstructure:"-"`
	CORSAllowedOrigins []string      `mapstructure:"-"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"`
	SQLitePath        string        `mapstructure:"SQLITE_PATH"`
	MongoURI          string        `mapstructure:"MONGO_URI"`
	MongoDatabase     string        `mapstructure:"MONGO_DATABASE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Auth
	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	JWTAccessTokenExpiry time.Duration `mapstructure:"-"`
	CookieName           string        `mapstructure:"COOKIE_NAME"`
	CookieDomain         string        `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure         bool          `mapstructure:"COOKIE_SECURE"`
	CookieSameSite       string        `mapstructure:"COOKIE_SAME_SITE"`
	BlocklistCleanup     time.Duration `mapstructure:"-"`

	// Application Specific Configuration
	DefaultAvatarURL  string `mapstructure:"DEFAULT_AVATAR_URL"`
	UserDeletePolicy  string `mapstructure:"USER_DELETE_POLICY"`
	SearchBackend     string `mapstructure:"SEARCH_BACKEND"`
	OrphanSweepEnable bool   `mapstructure:"ORPHAN_SWEEP_ENABLED"`

	// Image uploads
	UploadDir       string `mapstructure:"UPLOAD_DIR"`
	UploadURLPrefix string `mapstructure:"UPLOAD_URL_PREFIX"`
	UploadMaxBytes  int64  `mapstructure:"UPLOAD_MAX_BYTES"`
	UploadMaxFiles  int    `mapstructure:"UPLOAD_MAX_FILES"`

	// Cron Jobs
	OrphanAuditSchedule string `mapstructure:"ORPHAN_AUDIT_SCHEDULE"`

	// Elasticsearch Configuration
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Durations and lists are read as raw values so env strings like "30" parse.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.JWTAccessTokenExpiry = time.Duration(v.GetInt("JWT_ACCESS_TOKEN_EXPIRY_HOURS")) * time.Hour
	cfg.BlocklistCleanup = time.Duration(v.GetInt("BLOCKLIST_CLEANUP_MINUTES")) * time.Minute
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "estate_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("SQLITE_PATH", "estate.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "estate")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRY_HOURS", 24*7)
	v.SetDefault("COOKIE_NAME", "access_token")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_SAME_SITE", "Lax")
	v.SetDefault("BLOCKLIST_CLEANUP_MINUTES", 10)

	v.SetDefault("DEFAULT_AVATAR_URL", "https://cdn-icons-png.flaticon.com/512/149/149071.png")
	v.SetDefault("USER_DELETE_POLICY", DeletePolicyOrphan)
	v.SetDefault("SEARCH_BACKEND", SearchBackendStore)
	v.SetDefault("ORPHAN_SWEEP_ENABLED", false)
	v.SetDefault("ORPHAN_AUDIT_SCHEDULE", "@daily")

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 2<<20)
	v.SetDefault("UPLOAD_MAX_FILES", 6)

	// Elasticsearch is optional; empty disables indexing.
	v.SetDefault("ELASTICSEARCH_URL", "")
}

// Validate checks the settings the application cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("FATAL: JWT_SECRET is not set")
	}
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s, %s or %s)", c.DBDriver, DriverPostgres, DriverSQLite, DriverMongo)
	}
	switch c.UserDeletePolicy {
	case DeletePolicyOrphan, DeletePolicyCascade:
	default:
		return fmt.Errorf("unsupported USER_DELETE_POLICY %q (want %s or %s)", c.UserDeletePolicy, DeletePolicyOrphan, DeletePolicyCascade)
	}
	switch c.SearchBackend {
	case SearchBackendStore:
	case SearchBackendElasticsearch:
		if c.ElasticsearchURL == "" {
			return fmt.Errorf("SEARCH_BACKEND=%s requires ELASTICSEARCH_URL", SearchBackendElasticsearch)
		}
	default:
		return fmt.Errorf("unsupported SEARCH_BACKEND %q", c.SearchBackend)
	}
	return nil
}

// PostgresDSN builds the GORM postgres DSN from the individual DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

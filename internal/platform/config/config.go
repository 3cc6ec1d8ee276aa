// Package config loads application configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers for the user repository.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Avatar store backends.
const (
	AvatarStoreDisk  = "disk"
	AvatarStoreMinIO = "minio"
	AvatarStoreGCS   = "gcs"
)

// Config holds application configuration loaded from environment variables.
// Defaults target local development.
type Config struct {
	Env  string // development, production
	Port string

	// Storage
	StoreDriver   string
	DB            DBConfig
	SQLitePath    string
	RunMigrations bool
	MongoURI      string
	MongoDB       string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	// Avatars
	UploadsRoot  string
	AvatarStore  string
	MinIO        MinIOConfig
	GCSBucket    string
	GCSCredsJSON string

	// Events
	RabbitMQURL   string
	RabbitMQQueue string

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// CORS
	CORSAllowedOrigins []string
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// MinIOConfig holds MinIO object storage settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean in environment, using default", "key", key, "error", err, "default", def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid int in environment, using default", "key", key, "error", err, "default", def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration in environment, using default", "key", key, "error", err, "default", def)
			return def
		}
		return d
	}
	return def
}

func getlist(key, def string) []string {
	var out []string
	for _, s := range strings.Split(getenv(key, def), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads .env when present and returns configuration from environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}
	return FromEnv()
}

// FromEnv returns configuration from the current environment only.
func FromEnv() *Config {
	return &Config{
		Env:  getenv("APP_ENV", "development"),
		Port: getenv("PORT", "8080"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverPostgres)),
		DB: DBConfig{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			Name:     getenv("DB_NAME", "social"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		SQLitePath:    getenv("SQLITE_PATH", "social.db"),
		RunMigrations: getbool("RUN_MIGRATIONS", true),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "social"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		JWTSecret:    getenv("JWT_SECRET", ""),
		SessionTTL:   getdur("SESSION_TTL", 7*24*time.Hour),
		CookieSecure: getbool("COOKIE_SECURE", false),

		UploadsRoot: getenv("UPLOADS_ROOT", "static/uploads/avatars"),
		AvatarStore: strings.ToLower(getenv("AVATAR_STORE", AvatarStoreDisk)),
		MinIO: MinIOConfig{
			Endpoint:  getenv("MINIO_ENDPOINT", ""),
			AccessKey: getenv("MINIO_ACCESS_KEY", ""),
			SecretKey: getenv("MINIO_SECRET_KEY", ""),
			Bucket:    getenv("MINIO_BUCKET", "avatars"),
			UseSSL:    getbool("MINIO_USE_SSL", false),
		},
		GCSBucket:    getenv("GCS_BUCKET", ""),
		GCSCredsJSON: getenv("GCS_CREDENTIALS_JSON", ""),

		RabbitMQURL:   getenv("RABBITMQ_URL", ""),
		RabbitMQQueue: getenv("RABBITMQ_QUEUE", "social.user-events"),

		RateLimitMax:    getint("RATE_LIMIT_MAX", 30),
		RateLimitWindow: getdur("RATE_LIMIT_WINDOW", time.Minute),

		CORSAllowedOrigins: getlist("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

package common

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Identity  IdentityConfig
	Upload    UploadConfig
	CacheDir  string
	CacheTTL  time.Duration
	Analytics string
	LogLevel  string
}

type ServerConfig struct {
	Port          string
	Domain        string
	SessionSecret string
	SecureCookies bool
	LoginRPS      float64
	LoginBurst    int
}

type StoreConfig struct {
	Backend            string // "sql" or "firestore"
	SQLitePath         string
	FirestoreProjectID string
	CredentialsFile    string
	RedisAddr          string
	RedisChannel       string
}

type IdentityConfig struct {
	Backend        string // "local" or "firebase"
	FirebaseAPIKey string
	AdminEmail     string
	AdminPassword  string
}

type UploadConfig struct {
	Backend         string // "manual", "gcs" or "minio"
	GCSBucket       string
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOBucket     string
	MinIOUseSSL     bool
	MinIOPublicBase string
}

var ErrMissingSessionSecret = errors.New("SESSION_SECRET environment variable not set")

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DOMAIN", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOGIN_RPS", 0.2)
	v.SetDefault("LOGIN_BURST", 5)
	v.SetDefault("STORE_BACKEND", "sql")
	v.SetDefault("SQLITE_DB", "odontologia.db")
	v.SetDefault("REDIS_CHANNEL", "site-content")
	v.SetDefault("IDENTITY_BACKEND", "local")
	v.SetDefault("UPLOAD_BACKEND", "manual")
	v.SetDefault("MINIO_BUCKET", "odontologia")
	v.SetDefault("CACHE_DIR", "cache")
	v.SetDefault("CACHE_TTL", "10m")

	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetString("PORT"),
			Domain:        strings.TrimSuffix(v.GetString("DOMAIN"), "/"),
			SessionSecret: v.GetString("SESSION_SECRET"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
			LoginRPS:      v.GetFloat64("LOGIN_RPS"),
			LoginBurst:    v.GetInt("LOGIN_BURST"),
		},
		Store: StoreConfig{
			Backend:            strings.ToLower(v.GetString("STORE_BACKEND")),
			SQLitePath:         v.GetString("SQLITE_DB"),
			FirestoreProjectID: v.GetString("FIRESTORE_PROJECT_ID"),
			CredentialsFile:    v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			RedisAddr:          v.GetString("REDIS_ADDR"),
			RedisChannel:       v.GetString("REDIS_CHANNEL"),
		},
		Identity: IdentityConfig{
			Backend:        strings.ToLower(v.GetString("IDENTITY_BACKEND")),
			FirebaseAPIKey: v.GetString("FIREBASE_API_KEY"),
			AdminEmail:     v.GetString("ADMIN_EMAIL"),
			AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		},
		Upload: UploadConfig{
			Backend:         strings.ToLower(v.GetString("UPLOAD_BACKEND")),
			GCSBucket:       v.GetString("GCS_BUCKET"),
			MinIOEndpoint:   v.GetString("MINIO_ENDPOINT"),
			MinIOAccessKey:  v.GetString("MINIO_ACCESS_KEY"),
			MinIOSecretKey:  v.GetString("MINIO_SECRET_KEY"),
			MinIOBucket:     v.GetString("MINIO_BUCKET"),
			MinIOUseSSL:     v.GetBool("MINIO_USE_SSL"),
			MinIOPublicBase: v.GetString("MINIO_PUBLIC_BASE"),
		},
		CacheDir:  v.GetString("CACHE_DIR"),
		CacheTTL:  v.GetDuration("CACHE_TTL"),
		Analytics: v.GetString("ANALYTICS_DB"),
		LogLevel:  v.GetString("LOG_LEVEL"),
	}

	if cfg.Server.SessionSecret == "" {
		return nil, ErrMissingSessionSecret
	}

	return cfg, nil
}

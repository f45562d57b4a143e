package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv    string
	Port      string
	PublicURL string
	OriginURL string
	LogLevel  string

	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	RedisURL      string
	RedisAddr     string
	RedisPassword string

	JWTSecret                string
	JWTExpiry                time.Duration
	SignupTokenExpiry        time.Duration
	RequireEmailConfirmation bool

	UploadDir     string
	MaxUploadSize int64

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	CartTTL         time.Duration
	ProductCacheTTL time.Duration
	ProviderTimeout time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using system environment variables")
	}

	AppConfig = &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("APP_PORT", getEnv("PORT", "8082")),
		PublicURL: getEnv("PUBLIC_URL", "http://localhost:8082"),
		OriginURL: os.Getenv("ORIGIN_URL"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "farmconnect"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "database/migration"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:                getEnv("JWT_SECRET", "secret"),
		JWTExpiry:                getDuration("JWT_EXPIRY", 24*time.Hour),
		SignupTokenExpiry:        getDuration("SIGNUP_TOKEN_EXPIRY", 30*time.Minute),
		RequireEmailConfirmation: getBool("REQUIRE_EMAIL_CONFIRMATION", true),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSize: getInt64("MAX_UPLOAD_SIZE", 5242880),

		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: int(getInt64("SMTP_PORT", 587)),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "FarmConnect <no-reply@farmconnect.co.ke>"),

		CartTTL:         getDuration("CART_TTL", 24*time.Hour),
		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 15*time.Second),
	}

	log.Info().
		Str("env", AppConfig.AppEnv).
		Str("port", AppConfig.Port).
		Msg("Configuration loaded successfully")

	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c *Config) CloudinaryConfigured() bool {
	if c.CloudinaryURL != "" {
		return true
	}
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || v == 0 {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

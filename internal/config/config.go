package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort    string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	JWTSecret     string
	TokenTTL      time.Duration
	UploadDir     string
	UploadBaseURL string
	SwaggerHost   string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is picked up when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		MySQLDSN:      getEnv("MYSQL_DSN", "root@tcp(localhost:3306)/agrimap?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 30*24*time.Hour),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/uploads"),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

package config

import (
	"os"
	"time"
)

type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	JWTExpiry      time.Duration
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Load reads configuration from the environment with development fallbacks.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "5000"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:         getEnv("DB_NAME", "heritage-nest"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiry:      getDuration("EXPIRES_IN", time.Hour),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "property-photos"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

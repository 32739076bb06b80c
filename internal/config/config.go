package config

import (
	"os"
	"strings"
)

type Config struct {
	MongoURI            string
	RedisURI            string
	Port                string
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS (comma-separated) or FRONTEND_URL
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	Environment         string // ENV: production, development, etc.
}

func Load() *Config {
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	return &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/timecapsule")),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:                getEnv("PORT", "8080"),
		AllowedOrigins:      allowedOrigins,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		Environment:         strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

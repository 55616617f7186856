package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimit describes a fixed window for one action class.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	StorageBucket           string
	PostgresDSN             string
	MongoURI                string
	MongoDatabase           string
	RedisAddr               string
	JWTSecret               string

	// Per-action-class fixed windows. Limits live in configuration,
	// not in handler logic.
	RateLimits map[string]RateLimit
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		PostgresDSN:             getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "chirper"),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		RateLimits: map[string]RateLimit{
			"posts":    {Limit: getEnvInt("RATE_LIMIT_POSTS", 50), Window: time.Hour},
			"likes":    {Limit: getEnvInt("RATE_LIMIT_LIKES", 1000), Window: 24 * time.Hour},
			"follows":  {Limit: getEnvInt("RATE_LIMIT_FOLLOWS", 400), Window: 24 * time.Hour},
			"messages": {Limit: getEnvInt("RATE_LIMIT_MESSAGES", 60), Window: time.Minute},
			"default":  {Limit: getEnvInt("RATE_LIMIT_DEFAULT", 300), Window: time.Minute},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

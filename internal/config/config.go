package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	// Content backend (gemini-search, authentication, quiz-downloads).
	BackendBaseURL string
	BackendTimeout time.Duration

	DBDriver string
	DBDSN    string

	AuthSecret string
	SessionTTL time.Duration

	CORSOrigins []string
}

// FromEnv builds the config from the environment. A local .env file is loaded
// first when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		PublicURL:      os.Getenv("PUBLIC_URL"),
		BackendBaseURL: envOr("BACKEND_BASE_URL", "http://localhost:5000"),
		BackendTimeout: time.Duration(envInt("BACKEND_TIMEOUT_SEC", 60)) * time.Second,
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		AuthSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		SessionTTL:     time.Duration(envInt("SESSION_TTL_HOURS", 8)) * time.Hour,
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

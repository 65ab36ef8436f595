package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	RedisAddr string
	AMQPURL   string // empty = events disabled (noop publisher)

	JWTSecret       string
	SessionTTLHours int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	StateSecret        string

	// AllowedOrigin is the single target origin relay results are addressed
	// to. Empty means "*", which is a deliberate trust relaxation and is
	// logged loudly at startup.
	AllowedOrigin string

	// Session restoration budgets. Two distinct tiers: callers that supply
	// a bearer credential wait longer because priming may still be
	// propagating. Do not collapse these into one knob.
	RestoreTimeoutMS       int
	RestoreBearerTimeoutMS int
}

func Load() Config {
	return Config{
		Port:               getenv("APP_PORT", "8080"),
		MongoURI:           getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getenv("MONGO_DB", "bookmarkle"),
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		AMQPURL:            getenv("AMQP_URL", ""),
		JWTSecret:          getenv("JWT", "default_secret_key"),
		SessionTTLHours:    atoi(getenv("SESSION_TTL_HOURS", "24")),
		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getenv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/google/callback"),
		StateSecret:        getenv("OAUTH_STATE_SECRET", "default_state_secret"),
		AllowedOrigin:      getenv("ALLOWED_ORIGIN", ""),

		RestoreTimeoutMS:       atoi(getenv("RESTORE_TIMEOUT_MS", "5000")),
		RestoreBearerTimeoutMS: atoi(getenv("RESTORE_BEARER_TIMEOUT_MS", "7000")),
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

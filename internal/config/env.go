package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MatchConfig carries the tunables of the matching pipeline. Services take
// it by value so tests can run different configurations side by side.
type MatchConfig struct {
	// AI re-ranking stage.
	AIEnabled bool
	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITopN    int
	AITimeout time.Duration

	// Blend weights for traditional vs AI score. Must sum to 1.0 to keep
	// blended scores on the same 0-100 scale.
	TraditionalWeight float64
	AIWeight          float64

	// RatingWeight scales the counterpart-rating bonus. Kept below the
	// smallest structural bonus so rating alone cannot outrank a
	// coach/bay advantage.
	RatingWeight float64

	// MaxResults truncates the raw match list, 0 means unlimited.
	MaxResults int

	// BatchGroupSize bounds concurrent fan-out per batch group.
	BatchGroupSize int
}

type Env struct {
	AppAddr string
	GinMode string
	Debug   bool

	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string

	RedisAddr string

	JWTSecret    string
	CORSOrigins  []string
	BatchTimeout time.Duration

	Match MatchConfig
}

func LoadEnv() Env {
	// .env is optional, for local development only.
	_ = godotenv.Load()

	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),
		Debug:   getBool("DEBUG", false),

		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1:3306"),
		DBName:     getEnv("DB_NAME", "seat_exchange"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		JWTSecret:    getEnv("JWT_SECRET", "super-secret-key-change-me"),
		CORSOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		BatchTimeout: getDuration("MATCH_BATCH_TIMEOUT", 45*time.Second),

		Match: MatchConfig{
			AIEnabled:         getBool("AI_ENHANCEMENT_ENABLED", false),
			AIBaseURL:         getEnv("AI_BASE_URL", "https://api.openai.com"),
			AIAPIKey:          os.Getenv("AI_API_KEY"),
			AIModel:           getEnv("AI_MODEL", "gpt-4o-mini"),
			AITopN:            getInt("AI_TOP_N", 5),
			AITimeout:         getDuration("AI_TIMEOUT", 20*time.Second),
			TraditionalWeight: getFloat("MATCH_TRADITIONAL_WEIGHT", 0.6),
			AIWeight:          getFloat("MATCH_AI_WEIGHT", 0.4),
			RatingWeight:      getFloat("MATCH_RATING_WEIGHT", 2.0),
			MaxResults:        getInt("MATCH_MAX_RESULTS", 0),
			BatchGroupSize:    getInt("MATCH_BATCH_GROUP_SIZE", 3),
		},
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

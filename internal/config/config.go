package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CounterBackendSQLite = "sqlite"
	CounterBackendRedis  = "redis"
	CounterBackendMemory = "memory"
)

type Config struct {
	Addr      string
	DataDir   string
	DBPath    string
	LogLevel  string
	StaticDir string
	Swagger   bool

	DailyLimit    int
	HourlyLimit   int
	QuotaCacheTTL time.Duration

	CounterBackend   string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	StoreTimeout     time.Duration
	CounterRetention time.Duration
	SweepInterval    time.Duration

	AIProvider      string
	AIAPIKey        string
	AIBaseURL       string
	AIModel         string
	AIRateLimit     int
	UpstreamTimeout time.Duration

	PersonaName     string
	ProfilePath     string
	HistoryLimit    int
	MaxMessageChars int

	AdminPasswordHash string
	JWTSecret         string

	GeoURL   string
	ProxyURL string

	// TrustedProxies lists CIDRs or addresses allowed to set X-Forwarded-For.
	// Empty means the socket peer is the caller.
	TrustedProxies []string
}

// LoadEnvFiles loads .env.local then .env. Variables already present in the
// environment are never overwritten, so the process environment wins.
func LoadEnvFiles() error {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func Load() Config {
	dataDir := envString("PERSONA_DATA_DIR", "data")
	dbPath := os.Getenv("PERSONA_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "persona.db")
	}
	staticDir := os.Getenv("PERSONA_STATIC_DIR")
	if staticDir == "" {
		staticDir = detectStaticDir()
	}

	return Config{
		Addr:      envString("PERSONA_ADDR", ":8080"),
		DataDir:   dataDir,
		DBPath:    filepath.Clean(dbPath),
		LogLevel:  envString("PERSONA_LOG_LEVEL", "info"),
		StaticDir: filepath.Clean(staticDir),
		Swagger:   envBool("PERSONA_SWAGGER", true),

		DailyLimit:    envInt("PERSONA_DAILY_LIMIT", 50),
		HourlyLimit:   envInt("PERSONA_HOURLY_LIMIT", 15),
		QuotaCacheTTL: envDuration("PERSONA_QUOTA_CACHE_TTL", 3*time.Second),

		CounterBackend:   strings.ToLower(envString("PERSONA_COUNTER_BACKEND", CounterBackendSQLite)),
		RedisAddr:        os.Getenv("PERSONA_REDIS_ADDR"),
		RedisPassword:    os.Getenv("PERSONA_REDIS_PASSWORD"),
		RedisDB:          envInt("PERSONA_REDIS_DB", 0),
		StoreTimeout:     envDuration("PERSONA_STORE_TIMEOUT", 2*time.Second),
		CounterRetention: envDuration("PERSONA_COUNTER_RETENTION", 7*24*time.Hour),
		SweepInterval:    envDuration("PERSONA_SWEEP_INTERVAL", time.Hour),

		AIProvider:      envString("PERSONA_AI_PROVIDER", "openai"),
		AIAPIKey:        os.Getenv("PERSONA_AI_API_KEY"),
		AIBaseURL:       os.Getenv("PERSONA_AI_BASE_URL"),
		AIModel:         os.Getenv("PERSONA_AI_MODEL"),
		AIRateLimit:     envInt("PERSONA_AI_RATE_LIMIT", 10),
		UpstreamTimeout: envDuration("PERSONA_UPSTREAM_TIMEOUT", 60*time.Second),

		PersonaName:     envString("PERSONA_NAME", "Assistant"),
		ProfilePath:     os.Getenv("PERSONA_PROFILE_PATH"),
		HistoryLimit:    envInt("PERSONA_HISTORY_LIMIT", 20),
		MaxMessageChars: envInt("PERSONA_MAX_MESSAGE_CHARS", 4000),

		AdminPasswordHash: os.Getenv("PERSONA_ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("PERSONA_JWT_SECRET"),

		GeoURL:   os.Getenv("PERSONA_GEO_URL"),
		ProxyURL: os.Getenv("PERSONA_PROXY_URL"),

		TrustedProxies: envList("PERSONA_TRUSTED_PROXIES"),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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

func envBool(key string, fallback bool) bool {
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

// envList splits a comma separated value, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envDuration accepts Go durations ("90s") or plain seconds ("90").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func detectStaticDir() string {
	candidates := []string{
		"./frontend/dist",
		"../frontend/dist",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "./frontend/dist"
}

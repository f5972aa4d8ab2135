// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerType selects which room modes and operations a game server accepts.
type ServerType string

const (
	ServerNormal   ServerType = "normal"
	ServerPractice ServerType = "practice"
	ServerClub     ServerType = "club"
	ServerPrivate  ServerType = "private"
)

// ParseServerType maps a configuration string to a ServerType.
func ParseServerType(s string) (ServerType, error) {
	switch t := ServerType(strings.ToLower(strings.TrimSpace(s))); t {
	case ServerNormal, ServerPractice, ServerClub, ServerPrivate:
		return t, nil
	default:
		return "", fmt.Errorf("unknown server type %q", s)
	}
}

// Rewards holds the constants consumed by the post-match reward pipeline.
type Rewards struct {
	ExpRate         int  // global experience multiplier
	PointRate       int  // global points multiplier
	Practice        bool // practice matches may grant rewards
	LowersBonus     bool // underdog bonus enabled
	ExperienceLimit int  // total experience ceiling
	LevelGapLimit   int  // level gap above which every participant gets +10%
}

// Config is the full runtime configuration of a game server.
type Config struct {
	ServerType ServerType
	Port       string

	DatabaseURL string
	RedisAddr   string
	RedisDB     int
	QueueName   string
	TablesPath  string

	// Historian batching of archived matches.
	HistorianBatchSize   int
	HistorianFlush       time.Duration
	// HistorianMaxAttempts is how often a batch is tried before it is dead-lettered.
	HistorianMaxAttempts int

	Rewards Rewards

	CountdownSeconds int
	LoadingTimeout   time.Duration
	SwapLockDuration time.Duration

	// TokenExpire is the lifetime of session tokens; zero means they never expire.
	TokenExpire    time.Duration
	PrivateKeyPath string
	PublicKeyPath  string

	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when no environment overrides are present.
func Default() *Config {
	return &Config{
		ServerType: ServerNormal,
		Port:       "8080",
		RedisAddr:  "localhost:6379",
		QueueName:  "kicks_matches",

		HistorianBatchSize:   20,
		HistorianFlush:       500 * time.Millisecond,
		HistorianMaxAttempts: 5,

		Rewards: Rewards{
			ExpRate:         1,
			PointRate:       1,
			Practice:        true,
			LowersBonus:     true,
			ExperienceLimit: 2_147_000_000,
			LevelGapLimit:   10,
		},
		CountdownSeconds: 5,
		LoadingTimeout:   60 * time.Second,
		SwapLockDuration: 2 * time.Second,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads the configuration from the environment on top of Default.
func Load() (*Config, error) {
	cfg := Default()

	if v := getEnv("SERVER_TYPE", ""); v != "" {
		st, err := ParseServerType(v)
		if err != nil {
			return nil, err
		}
		cfg.ServerType = st
	}
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = databaseURL()
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.QueueName = getEnv("HISTORIAN_QUEUE_NAME", cfg.QueueName)
	cfg.TablesPath = getEnv("TABLES_PATH", "")
	cfg.HistorianBatchSize = getEnvInt("HISTORIAN_BATCH_SIZE", cfg.HistorianBatchSize)
	if ms := getEnvInt("HISTORIAN_FLUSH_MS", 0); ms > 0 {
		cfg.HistorianFlush = time.Duration(ms) * time.Millisecond
	}
	cfg.HistorianMaxAttempts = getEnvInt("HISTORIAN_MAX_ATTEMPTS", cfg.HistorianMaxAttempts)

	cfg.Rewards.ExpRate = getEnvInt("REWARDS_EXP_RATE", cfg.Rewards.ExpRate)
	cfg.Rewards.PointRate = getEnvInt("REWARDS_POINT_RATE", cfg.Rewards.PointRate)
	cfg.Rewards.Practice = getEnvBool("REWARDS_PRACTICE", cfg.Rewards.Practice)
	cfg.Rewards.LowersBonus = getEnvBool("REWARDS_LOWERS", cfg.Rewards.LowersBonus)
	cfg.Rewards.ExperienceLimit = getEnvInt("EXPERIENCE_LIMIT", cfg.Rewards.ExperienceLimit)
	cfg.Rewards.LevelGapLimit = getEnvInt("LEVEL_GAP_LIMIT", cfg.Rewards.LevelGapLimit)

	cfg.CountdownSeconds = getEnvInt("COUNTDOWN_SECONDS", cfg.CountdownSeconds)

	var err error
	if cfg.LoadingTimeout, err = getEnvDuration("LOADING_TIMEOUT", cfg.LoadingTimeout); err != nil {
		return nil, err
	}
	if cfg.SwapLockDuration, err = getEnvDuration("SWAP_LOCK_DURATION", cfg.SwapLockDuration); err != nil {
		return nil, err
	}

	if v := getEnv("TOKEN_EXPIRE_TIME", ""); v != "" && v != "never" && v != "0" {
		if cfg.TokenExpire, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("failed to parse TOKEN_EXPIRE_TIME: %w", err)
		}
	}
	cfg.PrivateKeyPath = getEnv("AUTH_PRIVATE_KEY", "")
	cfg.PublicKeyPath = getEnv("AUTH_PUBLIC_KEY", "")

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the game logic cannot work with.
func (c *Config) Validate() error {
	if c.Rewards.ExpRate < 0 || c.Rewards.PointRate < 0 {
		return fmt.Errorf("reward rates must not be negative (exp=%d, point=%d)", c.Rewards.ExpRate, c.Rewards.PointRate)
	}
	if c.Rewards.ExperienceLimit <= 0 {
		return fmt.Errorf("EXPERIENCE_LIMIT must be positive, got %d", c.Rewards.ExperienceLimit)
	}
	if c.CountdownSeconds <= 0 {
		return fmt.Errorf("COUNTDOWN_SECONDS must be positive, got %d", c.CountdownSeconds)
	}
	if c.LoadingTimeout <= 0 || c.SwapLockDuration <= 0 {
		return fmt.Errorf("timer durations must be positive")
	}
	if c.HistorianBatchSize <= 0 {
		return fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", c.HistorianBatchSize)
	}
	if c.HistorianMaxAttempts <= 0 {
		return fmt.Errorf("HISTORIAN_MAX_ATTEMPTS must be positive, got %d", c.HistorianMaxAttempts)
	}
	if c.TokenExpire < 0 {
		return fmt.Errorf("TOKEN_EXPIRE_TIME must not be negative")
	}
	if (c.PrivateKeyPath == "") != (c.PublicKeyPath == "") {
		return fmt.Errorf("AUTH_PRIVATE_KEY and AUTH_PUBLIC_KEY must be set together")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the discrete POSTGRES_* variables.
func databaseURL() string {
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return v
	}
	host := getEnv("PG_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := getEnv(key, "")
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := getEnv(key, "")
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}

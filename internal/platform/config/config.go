// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/storage/postgres"
	"github.com/marcelojr/daily-doodle/internal/platform/storage/redis"
)

// Config agrega todos os parâmetros necessários para API, worker e jobctl.
type Config struct {
	HTTPAddress string
	LogLevel    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresMaxConns int
	SlowQueryMillis  int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	FlagQueueKey string

	RateLimitEnabled       bool
	RateLimitMaxActions    int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	JobLockPrefix     string
	JobLockTTLSeconds int

	AutoMigrate bool

	WorkerMetricsAddress string

	JWTSecret  string
	AdminToken string

	Timezone    string
	MaxRoomSize int
	Schedule    domain.Schedule
}

// LoadDotEnv lê um arquivo .env se existir; variáveis já definidas no ambiente não são sobrescritas.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func Load() (Config, error) {
	if err := LoadDotEnv(getEnv("DOTENV_PATH", ".env")); err != nil {
		return Config{}, fmt.Errorf("config: .env invalido: %w", err)
	}

	// Defaults priorizam execução local; variáveis permitem sobrescrever em Docker/K8s.
	cfg := Config{
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "doodle"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "doodle"),
		PostgresDB:             getEnv("POSTGRES_DB", "daily_doodle"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresMaxConns:       getEnvAsInt("POSTGRES_MAX_CONNS", 25),
		SlowQueryMillis:        getEnvAsInt("DB_SLOW_QUERY_MS", 200),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPoolSize:          getEnvAsInt("REDIS_POOL_SIZE", 50),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		FlagQueueKey:           getEnv("FLAG_QUEUE_KEY", "fila:flags"),
		RateLimitEnabled:       getEnvAsBool("ANTIFRAUDE_RATE_LIMIT_ENABLED", true),
		RateLimitMaxActions:    getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_MAX", 30),
		RateLimitWindowSeconds: getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("ANTIFRAUDE_RATE_LIMIT_PREFIX", "ratelimit"),
		JobLockPrefix:          getEnv("JOB_LOCK_PREFIX", "lock:job"),
		JobLockTTLSeconds:      getEnvAsInt("JOB_LOCK_TTL_SECONDS", 600),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
		WorkerMetricsAddress:   getEnv("WORKER_METRICS_ADDRESS", ":9090"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		AdminToken:             os.Getenv("ADMIN_TOKEN"),
		Timezone:               getEnv("TIMEZONE", "Europe/London"),
		MaxRoomSize:            getEnvAsInt("MAX_ROOM_SIZE", 10),
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB invalido: %w", err)
	}
	cfg.RedisDB = dbInt

	if cfg.MaxRoomSize <= 0 {
		return Config{}, fmt.Errorf("config: MAX_ROOM_SIZE deve ser positivo, veio %d", cfg.MaxRoomSize)
	}

	schedule, err := loadSchedule()
	if err != nil {
		return Config{}, err
	}
	cfg.Schedule = schedule

	return cfg, nil
}

func loadSchedule() (domain.Schedule, error) {
	def := domain.DefaultSchedule()
	entries := []struct {
		env    string
		target *domain.TimeOfDay
	}{
		{"THEME_ROTATION_AT", &def.ThemeRotation},
		{"SUBMISSION_CLOSE_AT", &def.SubmissionClose},
		{"ROOM_ASSIGNMENT_AT", &def.RoomAssignment},
		{"WINNER_SELECTION_AT", &def.WinnerSelection},
	}
	for _, e := range entries {
		raw := os.Getenv(e.env)
		if raw == "" {
			continue
		}
		tod, err := domain.ParseTimeOfDay(raw)
		if err != nil {
			return domain.Schedule{}, fmt.Errorf("config: %s: %w", e.env, err)
		}
		*e.target = tod
	}
	if err := def.Validate(); err != nil {
		return domain.Schedule{}, fmt.Errorf("config: %w", err)
	}
	return def, nil
}

func (c Config) PostgresDSN() string {
	// Mantemos o formato DSN compatível com GORM e ferramentas de migração.
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func (c Config) PostgresOptions() postgres.Options {
	return postgres.Options{
		DSN:           c.PostgresDSN(),
		MaxOpenConns:  c.PostgresMaxConns,
		SlowThreshold: time.Duration(c.SlowQueryMillis) * time.Millisecond,
	}
}

func (c Config) RedisOptions() redis.Options {
	return redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		PoolSize: c.RedisPoolSize,
	}
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c Config) JobLockTTL() time.Duration {
	return time.Duration(c.JobLockTTLSeconds) * time.Second
}

func (c Config) Calendar() (domain.Calendar, error) {
	return domain.LoadCalendar(c.Timezone)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}

// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config agrega todos os parâmetros necessários para API e worker.
type Config struct {
	HTTPAddress string `env:"HTTP_ADDRESS" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"luckydraw"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"luckydraw"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"lucky_draw"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	PostgresMaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
	PostgresMaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"25"`
	PostgresConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"1h"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	FilaKey           string `env:"REDIS_ENTRY_QUEUE" envDefault:"fila:entradas"`
	ContadorKeyPrefix string `env:"REDIS_COUNTER_PREFIX" envDefault:"contador"`
	EventosPrefix     string `env:"REDIS_DRAW_CHANNEL_PREFIX" envDefault:"sorteio"`

	AdmissionThrottleEnabled bool          `env:"ADMISSION_THROTTLE_ENABLED" envDefault:"true"`
	AdmissionThrottleMax     int           `env:"ADMISSION_THROTTLE_MAX" envDefault:"10"`
	AdmissionThrottleWindow  time.Duration `env:"ADMISSION_THROTTLE_WINDOW" envDefault:"1m"`
	AdmissionThrottlePrefix  string        `env:"ADMISSION_THROTTLE_PREFIX" envDefault:"ratelimit:entradas"`

	PhotoURLTemplate string `env:"PHOTO_URL_TEMPLATE"`

	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	WorkerMetricsAddress string `env:"WORKER_METRICS_ADDRESS" envDefault:":9090"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.PhotoURLTemplate != "" && !strings.Contains(cfg.PhotoURLTemplate, "%s") {
		return Config{}, fmt.Errorf("config: PHOTO_URL_TEMPLATE precisa conter %%s")
	}
	return cfg, nil
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

// SlogLevel traduz LOG_LEVEL; valores desconhecidos caem em info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/services"
	"github.com/yeremiapane/table-booking/utils"
	"gorm.io/datatypes"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	Location         *time.Location
	Opening          datatypes.Time
	Closing          datatypes.Time
	CancellationLock time.Duration
	BookingBuffer    time.Duration
	PageSize         int

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigin     string
}

// Default is the configuration used when no variable is set.
func Default() Config {
	rules := services.DefaultRules()
	return Config{
		Port:             "8080",
		GinMode:          "debug",
		DBDriver:         "sqlite",
		DBDSN:            "table_booking.db?_foreign_keys=on",
		JWTSecret:        string(utils.JWTSecret),
		TokenTTL:         utils.TokenTTL,
		Location:         time.Local,
		Opening:          rules.Opening,
		Closing:          rules.Closing,
		CancellationLock: rules.CancellationLock,
		BookingBuffer:    services.DefaultConflictPolicy.Window,
		PageSize:         utils.DefaultPageSize,
		RateLimitRPS:     50,
		RateLimitBurst:   10,
		CORSOrigin:       "*",
	}
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables on top of Default.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", cfg.CORSOrigin)

	switch cfg.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q", cfg.DBDriver)
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if cfg.Location, err = time.LoadLocation(tz); err != nil {
			return Config{}, fmt.Errorf("TIMEZONE: %w", err)
		}
	}
	if cfg.Opening, err = getEnvClock("OPENING_TIME", cfg.Opening); err != nil {
		return Config{}, err
	}
	if cfg.Closing, err = getEnvClock("CLOSING_TIME", cfg.Closing); err != nil {
		return Config{}, err
	}
	if cfg.Closing < cfg.Opening {
		return Config{}, fmt.Errorf("CLOSING_TIME must not be before OPENING_TIME")
	}

	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.CancellationLock, err = getEnvDuration("CANCELLATION_LOCK", cfg.CancellationLock); err != nil {
		return Config{}, err
	}
	if cfg.BookingBuffer, err = getEnvDuration("BOOKING_BUFFER", cfg.BookingBuffer); err != nil {
		return Config{}, err
	}

	if cfg.PageSize, err = getEnvInt("PAGE_SIZE", cfg.PageSize); err != nil {
		return Config{}, err
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be positive")
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
	}

	return cfg, nil
}

func (c Config) Rules() services.Rules {
	return services.Rules{
		Opening:          c.Opening,
		Closing:          c.Closing,
		CancellationLock: c.CancellationLock,
		Location:         c.Location,
	}
}

func (c Config) ConflictPolicy() services.ConflictPolicy {
	p := services.DefaultConflictPolicy
	p.Window = c.BookingBuffer
	return p
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func getEnvClock(key string, def datatypes.Time) (datatypes.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	t, err := models.ParseClock(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

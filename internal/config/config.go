package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/pricing"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Pricing  pricing.Tariff
	Distance DistanceConfig
	Redis    RedisConfig
	Notify   NotifyConfig
	Events   EventsConfig
	Log      obs.LogConfig
}

type ServerConfig struct {
	Addr         string
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Path     string // SQLite database file
	SeedPath string // optional JSON array of extra accounts
	CacheURL string // optional Postgres URL for shared distance caches
}

type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool
}

type DistanceConfig struct {
	ORSKey     string
	ORSBaseURL string
	CacheTTL   time.Duration
	// AvgSpeedKmh estimates driving time for legs whose source has none.
	AvgSpeedKmh float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NotifyConfig struct {
	TelegramToken  string
	TelegramChatID int64
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// Production reports whether the service runs with production safeguards.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []string
	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	int64Var := func(key string, def int64) int64 {
		v, err := getEnvInt64(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	floatVar := func(key string, def float64) float64 {
		v, err := getEnvFloat(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durVar := func(key string, def time.Duration) time.Duration {
		v, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	boolVar := func(key string, def bool) bool {
		v, err := getEnvBool(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	tariff := pricing.DefaultTariff()
	tariff.Base = floatVar("PRICE_BASE", tariff.Base)
	tariff.PerKm = floatVar("PRICE_PER_KM", tariff.PerKm)
	tariff.PerKg = floatVar("PRICE_PER_KG", tariff.PerKg)
	tariff.PerM3 = floatVar("PRICE_PER_M3", tariff.PerM3)
	tariff.PackagingFee = floatVar("PACKAGING_FEE", tariff.PackagingFee)
	tariff.InsuranceRate = floatVar("INSURANCE_RATE", tariff.InsuranceRate)

	cfg := &Config{
		Env: strings.ToLower(Get("APP_ENV", "development")),
		Server: ServerConfig{
			Addr:         ":" + Get("PORT", "8080"),
			WriteTimeout: durVar("HTTP_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Path:     Get("DB_PATH", "data/app.db"),
			SeedPath: Get("SEED_PATH", "data/seeds/users.json"),
			CacheURL: Get("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			SessionSecret: Get("SESSION_SECRET", ""),
			SessionTTL:    durVar("SESSION_TTL", 7*24*time.Hour),
			SecureCookie:  boolVar("SESSION_SECURE", false),
		},
		Pricing: tariff,
		Distance: DistanceConfig{
			ORSKey:      Get("ORS_API_KEY", ""),
			ORSBaseURL:  Get("ORS_BASE_URL", ""),
			CacheTTL:    durVar("DISTANCE_CACHE_TTL", 30*24*time.Hour),
			AvgSpeedKmh: floatVar("DISTANCE_AVG_SPEED_KMH", 60),
		},
		Redis: RedisConfig{
			Addr:     Get("REDIS_ADDR", ""),
			Password: Get("REDIS_PASSWORD", ""),
			DB:       intVar("REDIS_DB", 0),
		},
		Notify: NotifyConfig{
			TelegramToken:  Get("TELEGRAM_TOKEN", ""),
			TelegramChatID: int64Var("TELEGRAM_CHAT_ID", 0),
		},
		Events: EventsConfig{
			AMQPURL:  Get("AMQP_URL", ""),
			Exchange: Get("AMQP_EXCHANGE", "freight.orders"),
		},
		Log: obs.LogConfig{
			Level:      Get("LOG_LEVEL", "info"),
			File:       Get("LOG_FILE", ""),
			MaxSizeMB:  intVar("LOG_MAX_SIZE_MB", 50),
			MaxBackups: intVar("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: intVar("LOG_MAX_AGE_DAYS", 28),
			Console:    boolVar("LOG_CONSOLE", true),
		},
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	if cfg.Auth.SessionSecret == "" {
		if cfg.Production() {
			return nil, fmt.Errorf("SESSION_SECRET environment variable is not set; required for production")
		}
		cfg.Auth.SessionSecret = randomSecret()
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, defaultVal int) (int, error) {
	if value := os.Getenv(key); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvInt64(key string, defaultVal int64) (int64, error) {
	if value := os.Getenv(key); value != "" {
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return v, nil
	}
	return defaultVal, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	if value := os.Getenv(key); value != "" {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number for %s: %w", key, err)
		}
		return v, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		v, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return v, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value := os.Getenv(key); value != "" {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return v, nil
	}
	return defaultVal, nil
}

// randomSecret gives development servers a per-process session key.
func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("config: read random: %v", err))
	}
	return hex.EncodeToString(b)
}

func mask(s string) string {
	if s == "" {
		return "-"
	}
	return "***"
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Env: %s, Addr: %s, DB: %s, CacheDB: %s, Session: %s, ORS: %s, Redis: %s, Telegram: %s, AMQP: %s, Tariff: %.0f/%.0f/km}",
		c.Env, c.Server.Addr, c.Database.Path, mask(c.Database.CacheURL), mask(c.Auth.SessionSecret),
		mask(c.Distance.ORSKey), c.Redis.Addr, mask(c.Notify.TelegramToken), mask(c.Events.AMQPURL),
		c.Pricing.Base, c.Pricing.PerKm,
	)
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE без системной базы зон

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Варианты хранилища
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment string `mapstructure:"ENV"`
	Storage     string `mapstructure:"STORAGE"`
	DBDSN       string `mapstructure:"DB_DSN"`
	Migrations  bool   `mapstructure:"MIGRATIONS"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	ProjectionTTL time.Duration `mapstructure:"PROJECTION_TTL"`

	HorizonDays   int            `mapstructure:"HORIZON_DAYS"`
	Location      *time.Location `mapstructure:"TIMEZONE"`
	BusinessStart int            `mapstructure:"BUSINESS_HOURS_START"`
	BusinessEnd   int            `mapstructure:"BUSINESS_HOURS_END"`

	DisplayCurrency    string          `mapstructure:"DISPLAY_CURRENCY"`
	CurrencyMultiplier decimal.Decimal `mapstructure:"CURRENCY_MULTIPLIER"`

	TelegramToken    string `mapstructure:"TELEGRAM_TOKEN"`
	BookingRateLimit int    `mapstructure:"BOOKING_RATE_LIMIT"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из функции чтения переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	e := envReader{getenv: getenv}

	cfg := &Config{
		Environment:     e.str("ENV", "development"),
		Storage:         strings.ToLower(e.str("STORAGE", StoragePostgres)),
		DBDSN:           getenv("DB_DSN"),
		Migrations:      e.boolean("MIGRATIONS", true),
		HTTPAddr:        e.str("HTTP_ADDR", ":8080"),
		RedisAddr:       getenv("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD"),
		RedisDB:         e.integer("REDIS_DB", 0),
		ProjectionTTL:   e.duration("PROJECTION_TTL", 10*time.Minute),
		HorizonDays:     e.integer("HORIZON_DAYS", 30),
		BusinessStart:   e.clock("BUSINESS_HOURS_START", "06:00"),
		BusinessEnd:     e.clock("BUSINESS_HOURS_END", "23:00"),
		DisplayCurrency: strings.ToUpper(getenv("DISPLAY_CURRENCY")),
		TelegramToken:   getenv("TELEGRAM_TOKEN"),

		CurrencyMultiplier: e.decimal("CURRENCY_MULTIPLIER"),
		BookingRateLimit:   e.integer("BOOKING_RATE_LIMIT", 30),
	}

	tz := e.str("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.fail("TIMEZONE", tz, err)
	}
	cfg.Location = loc

	if len(e.errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(e.errs, "; "))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	// Проверяем обязательные поля
	switch c.Storage {
	case StoragePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}

	if c.ProjectionTTL <= 0 {
		return fmt.Errorf("PROJECTION_TTL must be positive, got %s", c.ProjectionTTL)
	}
	if c.HorizonDays < 1 || c.HorizonDays > 60 {
		return fmt.Errorf("HORIZON_DAYS must be within 1..60, got %d", c.HorizonDays)
	}
	if c.BusinessStart >= c.BusinessEnd {
		return fmt.Errorf("BUSINESS_HOURS_START must be before BUSINESS_HOURS_END")
	}
	if c.BusinessStart%model.DefaultGranularityMinutes != 0 || c.BusinessEnd%model.DefaultGranularityMinutes != 0 {
		return fmt.Errorf("business hours must align to %d minutes", model.DefaultGranularityMinutes)
	}
	if c.DisplayCurrency != "" && !c.CurrencyMultiplier.IsPositive() {
		return fmt.Errorf("CURRENCY_MULTIPLIER must be positive when DISPLAY_CURRENCY is set")
	}
	if c.BookingRateLimit < 0 {
		return fmt.Errorf("BOOKING_RATE_LIMIT must not be negative")
	}

	return nil
}

// IsProduction production окружение
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

type envReader struct {
	getenv func(string) string
	errs   []string
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Sprintf("%s=%q: %v", key, value, err))
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}

func (e *envReader) clock(key, def string) int {
	v := e.str(key, def)
	m, err := model.ParseClock(v)
	if err != nil {
		e.fail(key, v, err)
		return 0
	}
	return m
}

func (e *envReader) decimal(key string) decimal.Decimal {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		e.fail(key, v, err)
		return decimal.Zero
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL       string
	SupabaseKey       string
	SupabaseEmail     string
	SupabasePassword  string
	SupabaseUserID    string
	TransactionsTable string
	ProfilesTable     string
	RemoteHealthCheck bool

	// Хранилище устройства
	DeviceDBPath string

	// Отображение
	TelegramToken  string
	CurrencySymbol string

	// Логирование
	LogLevel  string
	LogFormat string
}

// LoadConfig читает .env, если он есть, затем окружение процесса.
// Отсутствие .env не ошибка.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv собирает конфигурацию только из переменных окружения
func FromEnv() *Config {
	return &Config{
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseKey:       os.Getenv("SUPABASE_KEY"),
		SupabaseEmail:     os.Getenv("SUPABASE_EMAIL"),
		SupabasePassword:  os.Getenv("SUPABASE_PASSWORD"),
		SupabaseUserID:    os.Getenv("SUPABASE_USER_ID"),
		TransactionsTable: getEnv("TRANSACTIONS_TABLE", "transactions"),
		ProfilesTable:     getEnv("PROFILES_TABLE", "profiles"),
		RemoteHealthCheck: getEnvBool("REMOTE_HEALTH_CHECK", false),

		DeviceDBPath: getEnv("DEVICE_DB_PATH", "./data/device.db"),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// RemoteConfigured сообщает, хватает ли настроек для работы с Supabase
func (c *Config) RemoteConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// Validate проверяет конфигурацию и сообщает обо всех проблемах сразу
func (c *Config) Validate() error {
	var problems []string

	if c.SupabaseURL != "" {
		if u, err := url.Parse(c.SupabaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid SUPABASE_URL %q: must be an http(s) URL", c.SupabaseURL))
		}
		if c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_KEY is required when SUPABASE_URL is set")
		}
	}
	if (c.SupabaseEmail == "") != (c.SupabasePassword == "") {
		problems = append(problems, "SUPABASE_EMAIL and SUPABASE_PASSWORD must be set together")
	}
	if c.SupabaseUserID != "" {
		if _, err := uuid.Parse(c.SupabaseUserID); err != nil {
			problems = append(problems, fmt.Sprintf("invalid SUPABASE_USER_ID %q: must be a UUID", c.SupabaseUserID))
		}
	}
	if strings.TrimSpace(c.TransactionsTable) == "" {
		problems = append(problems, "TRANSACTIONS_TABLE cannot be empty")
	}
	if strings.TrimSpace(c.ProfilesTable) == "" {
		problems = append(problems, "PROFILES_TABLE cannot be empty")
	}
	if strings.TrimSpace(c.DeviceDBPath) == "" {
		problems = append(problems, "DEVICE_DB_PATH cannot be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT %q: must be text or json", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

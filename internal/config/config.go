package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит конфигурацию приложения
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SSH-туннель до базы (пустой SSHHost - подключаемся напрямую)
	SSHHost     string
	SSHPort     string
	SSHUser     string
	SSHPassword string
	SSHKeyPath  string
	// known_hosts для проверки ключа хоста; пусто - ~/.ssh/known_hosts
	SSHKnownHosts string
	// Отключить проверку ключа хоста (только для отладки)
	SSHInsecureIgnoreHostKey bool

	// Ollama
	OllamaURL       string // URL Ollama, например http://localhost:11434
	OllamaModel     string // Модель, например gemma2:9b-instruct-q4_K_M
	LocalLLMEnabled bool

	// OpenRouter
	OpenRouterBaseURL string
	OpenRouterModel   string
	OpenRouterAPIKey  string
	FallbackEnabled   bool
	LLMTimeout        time.Duration

	DefaultUserID int64
	LogMode       string

	// Параметры генерации
	DuplicatesIgnoreVariant bool
	MinCatalogSize          int

	// Регулярная генерация (cron)
	Schedule      string
	ScheduleUsers []int64
}

// Load загружает конфигурацию из переменных окружения или .env файла
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom то же, что Load, но с явным путём к .env
func LoadFrom(envPath string) (*Config, error) {
	// Переменные процесса важнее .env; сам .env необязателен
	v := viper.New()
	v.SetConfigFile(envPath)
	v.SetConfigType("env")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(envPath); statErr == nil {
			return nil, fmt.Errorf("ошибка чтения %s: %w", envPath, err)
		}
	}

	getEnv := func(key, defaultValue string) string {
		if value := strings.TrimSpace(v.GetString(key)); value != "" {
			return value
		}
		return defaultValue
	}

	var err error
	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "postgres"),

		SSHHost:     getEnv("SSH_HOST", ""),
		SSHPort:     getEnv("SSH_PORT", "22"),
		SSHUser:     getEnv("SSH_USER", ""),
		SSHPassword: getEnv("SSH_PASSWORD", ""),
		SSHKeyPath:  getEnv("SSH_KEY_PATH", ""),

		SSHKnownHosts: getEnv("SSH_KNOWN_HOSTS", ""),

		OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: getEnv("OLLAMA_MODEL", "gemma2:9b-instruct-q4_K_M"),

		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),

		LogMode:  getEnv("LOG_MODE", "dev"),
		Schedule: getEnv("PLAN_SCHEDULE", ""),
	}

	if cfg.LocalLLMEnabled, err = parseBool(getEnv("LOCAL_LLM_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("LOCAL_LLM_ENABLED: %w", err)
	}
	if cfg.FallbackEnabled, err = parseBool(getEnv("LLM_FALLBACK_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("LLM_FALLBACK_ENABLED: %w", err)
	}
	if cfg.SSHInsecureIgnoreHostKey, err = parseBool(getEnv("SSH_INSECURE_IGNORE_HOST_KEY", "false")); err != nil {
		return nil, fmt.Errorf("SSH_INSECURE_IGNORE_HOST_KEY: %w", err)
	}
	if cfg.DuplicatesIgnoreVariant, err = parseBool(getEnv("PLAN_DUPLICATES_IGNORE_VARIANT", "false")); err != nil {
		return nil, fmt.Errorf("PLAN_DUPLICATES_IGNORE_VARIANT: %w", err)
	}

	timeoutSec, err := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "120"))
	if err != nil || timeoutSec <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT_SECONDS должен быть положительным целым")
	}
	cfg.LLMTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.MinCatalogSize, err = strconv.Atoi(getEnv("MIN_CATALOG_SIZE", "15")); err != nil {
		return nil, fmt.Errorf("MIN_CATALOG_SIZE: %w", err)
	}
	if cfg.DefaultUserID, err = strconv.ParseInt(getEnv("DEFAULT_USER_ID", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("DEFAULT_USER_ID: %w", err)
	}
	if cfg.ScheduleUsers, err = ParseUserIDs(getEnv("PLAN_SCHEDULE_USERS", "")); err != nil {
		return nil, fmt.Errorf("PLAN_SCHEDULE_USERS: %w", err)
	}

	// Ключ OpenRouter: keychain -> файл -> окружение/.env
	cfg.OpenRouterAPIKey = ResolveAPIKey(DefaultSecretStore(), getEnv("OPENROUTER_API_KEY", ""))

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// UseSSH нужно ли поднимать туннель
func (c *Config) UseSSH() bool {
	return c.SSHHost != ""
}

// ParseUserIDs разбирает список id через запятую
func ParseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректный id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("не булево значение %q", v)
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is the fallback signing secret; release mode refuses it
const DefaultJWTSecret = "JWT_SECRET"

// MinReleaseBcryptCost is the lowest bcrypt cost accepted in release mode
const MinReleaseBcryptCost = 10

// DefaultSymbols are the tickers requested from the quote source
var DefaultSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
	"FB", "NFLX", "NVDA", "AMD", "INTC",
	"BA", "DIS", "UBER", "LYFT", "PYPL",
	"SQ", "SHOP", "TWTR", "ORCL", "IBM",
	"SPOT", "PLTR", "CRM", "CSCO", "ADBE",
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Quotes   QuotesConfig   `yaml:"quotes"`
	Icon     IconConfig     `yaml:"icon"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	Mode                string `yaml:"mode"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type QuotesConfig struct {
	BaseURL                string   `yaml:"base_url"`
	APIKey                 string   `yaml:"api_key"`
	Symbols                []string `yaml:"symbols"`
	TimeoutSeconds         int      `yaml:"timeout_seconds"`
	CacheTTLSeconds        int      `yaml:"cache_ttl_seconds"`
	RefreshIntervalSeconds int      `yaml:"refresh_interval_seconds"`
}

type IconConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

type LogConfig struct {
	Dir        string `yaml:"dir"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                3500,
			Mode:                "debug",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
		},
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "postgres",
			DBName:  "stocktr",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    6379,
		},
		JWT: JWTConfig{
			Secret:      DefaultJWTSecret,
			ExpireHours: 24,
		},
		Auth: AuthConfig{
			BcryptCost: 10,
		},
		Quotes: QuotesConfig{
			BaseURL:                "https://financialmodelingprep.com",
			Symbols:                append([]string(nil), DefaultSymbols...),
			TimeoutSeconds:         10,
			CacheTTLSeconds:        60,
			RefreshIntervalSeconds: 0,
		},
		Icon: IconConfig{
			MaxBytes: 5 << 20,
		},
		Log: LogConfig{
			Dir:        "logs",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 30,
			MaxAgeDays: 30,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
	}
}

// Load loads configuration from defaults, the YAML file (if present), a .env file
// (if present) and environment variables, in that order of precedence
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", path)
		default:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Override with environment variables if present
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	// Server
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	// PORT is the conventional platform override
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Server.Mode = getEnv("SERVER_MODE", c.Server.Mode)

	// Database
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	// Redis
	c.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnvAsInt("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)

	// JWT
	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.ExpireHours = getEnvAsInt("JWT_EXPIRE_HOURS", c.JWT.ExpireHours)

	c.Auth.BcryptCost = getEnvAsInt("BCRYPT_COST", c.Auth.BcryptCost)

	// Quotes
	c.Quotes.BaseURL = getEnv("QUOTES_BASE_URL", c.Quotes.BaseURL)
	c.Quotes.APIKey = getEnv("QUOTES_API_KEY", c.Quotes.APIKey)
	if v := os.Getenv("QUOTES_SYMBOLS"); v != "" {
		c.Quotes.Symbols = splitList(v)
	}
	c.Quotes.TimeoutSeconds = getEnvAsInt("QUOTES_TIMEOUT_SECONDS", c.Quotes.TimeoutSeconds)
	c.Quotes.CacheTTLSeconds = getEnvAsInt("QUOTES_CACHE_TTL_SECONDS", c.Quotes.CacheTTLSeconds)
	c.Quotes.RefreshIntervalSeconds = getEnvAsInt("QUOTES_REFRESH_INTERVAL_SECONDS", c.Quotes.RefreshIntervalSeconds)

	// Logging
	c.Log.Dir = getEnv("LOG_DIR", c.Log.Dir)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
}

// Validate checks settings that would make the server unsafe or unable to start
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.Server.Mode == "release" && c.JWT.Secret == DefaultJWTSecret {
		return errors.New("jwt secret must be changed from the default in release mode")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range [4,31]", c.Auth.BcryptCost)
	}
	if c.Server.Mode == "release" && c.Auth.BcryptCost < MinReleaseBcryptCost {
		return fmt.Errorf("bcrypt cost %d below %d in release mode", c.Auth.BcryptCost, MinReleaseBcryptCost)
	}
	if len(c.Quotes.Symbols) == 0 {
		return errors.New("at least one quote symbol is required")
	}
	return nil
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TokenTTL returns the configured token lifetime
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpireHours) * time.Hour
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

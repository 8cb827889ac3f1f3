package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"heartbridge/internal/validation"
)

// Supported values for DatabaseType
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabasePgx      = "pgx"
	DatabaseMySQL    = "mysql"
	DatabaseMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	ServerPort   string `yaml:"port"`
	AppBaseURL   string `yaml:"app_base_url"`
	Debug        bool   `yaml:"debug"`
	TrustProxy   bool   `yaml:"trust_proxy"`
	DatabaseType string `yaml:"database_type"`
	DatabasePath string `yaml:"db_path"`
	DatabaseURL  string `yaml:"database_url"`

	SessionDuration time.Duration `yaml:"session_duration"`
	UploadMaxSize   int64         `yaml:"upload_max_size"`
	AvatarPath      string        `yaml:"avatar_path"`
	CSRFSecret      string        `yaml:"csrf_secret"`

	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	APITokenTTL time.Duration `yaml:"api_token_ttl"`
	CORSOrigins []string      `yaml:"cors_origins"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`

	BadWordsURL string `yaml:"bad_words_url"`

	AWSRegion        string `yaml:"aws_region"`
	SESFromEmail     string `yaml:"ses_from_email"`
	SESFromName      string `yaml:"ses_from_name"`
	AdminNotifyEmail string `yaml:"admin_notify_email"`
}

// Default returns the configuration used when neither a file nor the environment sets a value
func Default() *Config {
	return &Config{
		ServerPort:      "8080",
		AppBaseURL:      "http://localhost:8080",
		DatabaseType:    DatabaseSQLite,
		DatabasePath:    "./heartbridge.db",
		SessionDuration: 24 * time.Hour,
		UploadMaxSize:   2 * 1024 * 1024, // 2MB
		AvatarPath:      "./avatars",
		JWTIssuer:       "heartbridge",
		APITokenTTL:     time.Hour,
		CORSOrigins:     []string{"*"},
		LogLevel:        "info",
		BadWordsURL:     "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en",
		AWSRegion:       "us-east-1",
		SESFromName:     "HeartBridge",
	}
}

// FilePath returns CONFIG_FILE or the default config.yaml
func FilePath() string {
	return getEnv("CONFIG_FILE", "config.yaml")
}

// Load reads the optional YAML file at path, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.DatabaseType = strings.ToLower(strings.TrimSpace(cfg.DatabaseType))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.AppBaseURL = getEnv("APP_BASE_URL", c.AppBaseURL)
	c.DatabaseType = getEnv("DATABASE_TYPE", c.DatabaseType)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.AvatarPath = getEnv("AVATAR_PATH", c.AvatarPath)
	c.CSRFSecret = getEnv("CSRF_SECRET", c.CSRFSecret)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.BadWordsURL = getEnv("BAD_WORDS_URL", c.BadWordsURL)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.SESFromEmail = getEnv("SES_FROM_EMAIL", c.SESFromEmail)
	c.SESFromName = getEnv("SES_FROM_NAME", c.SESFromName)
	c.AdminNotifyEmail = getEnv("ADMIN_NOTIFY_EMAIL", c.AdminNotifyEmail)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	var err error
	if c.SessionDuration, err = getEnvDuration("SESSION_DURATION", c.SessionDuration); err != nil {
		return err
	}
	if c.APITokenTTL, err = getEnvDuration("API_TOKEN_TTL", c.APITokenTTL); err != nil {
		return err
	}
	if c.UploadMaxSize, err = getEnvInt64("UPLOAD_MAX_SIZE", c.UploadMaxSize); err != nil {
		return err
	}
	if c.Debug, err = getEnvBool("DEBUG", c.Debug); err != nil {
		return err
	}
	if c.LogPretty, err = getEnvBool("LOG_PRETTY", c.LogPretty); err != nil {
		return err
	}
	if c.TrustProxy, err = getEnvBool("TRUST_PROXY", c.TrustProxy); err != nil {
		return err
	}
	return nil
}

// Validate rejects combinations the server cannot start with
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case DatabaseSQLite, "sqlite3", "":
		if c.DatabasePath == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case DatabasePostgres, "postgresql", DatabasePgx, DatabaseMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType)
		}
	case DatabaseMemory:
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.SessionDuration <= 0 {
		return fmt.Errorf("session duration must be positive")
	}
	if c.APITokenTTL <= 0 {
		return fmt.Errorf("api token ttl must be positive")
	}
	if c.UploadMaxSize <= 0 {
		return fmt.Errorf("upload max size must be positive")
	}
	for key, addr := range map[string]string{"SES_FROM_EMAIL": c.SESFromEmail, "ADMIN_NOTIFY_EMAIL": c.AdminNotifyEmail} {
		if addr == "" {
			continue
		}
		if err := validation.ValidateEmail(addr); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// SESEnabled reports whether admin-request notifications can be sent
func (c *Config) SESEnabled() bool {
	return c.SESFromEmail != "" && c.AdminNotifyEmail != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

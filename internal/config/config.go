package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		AdminKey    string   `yaml:"adminKey"`
		CORSOrigins []string `yaml:"corsOrigins"`
		FrontendURL string   `yaml:"frontendURL"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Storage struct {
		// memory | postgres | mysql | sqlite
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	OpenAI struct {
		APIKey      string        `yaml:"apiKey"`
		Model       string        `yaml:"model"`
		BaseURL     string        `yaml:"baseURL"`
		MaxTokens   int           `yaml:"maxTokens"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"openai"`

	Annotation struct {
		MaxInputLength int    `yaml:"maxInputLength"`
		ProviderName   string `yaml:"providerName"`
	} `yaml:"annotation"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Stripe struct {
		SecretKey      string `yaml:"secretKey"`
		PublishableKey string `yaml:"publishableKey"`
		WebhookSecret  string `yaml:"webhookSecret"`
		Currency       string `yaml:"currency"`
	} `yaml:"stripe"`

	LiveKit struct {
		URL       string        `yaml:"url"`
		APIKey    string        `yaml:"apiKey"`
		APISecret string        `yaml:"apiSecret"`
		TokenTTL  time.Duration `yaml:"tokenTTL"`
	} `yaml:"livekit"`

	GitHub struct {
		ActionsToken string `yaml:"actionsToken"`
		Owner        string `yaml:"owner"`
		Repo         string `yaml:"repo"`
		Workflow     string `yaml:"workflow"`
		Ref          string `yaml:"ref"`
	} `yaml:"github"`

	Environment string `yaml:"environment"`
}

// Load reads an optional .env file, the YAML config at path (missing file is fine)
// and finally applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Host, "HOST")
	setInt(&c.Server.Port, "PORT")
	setString(&c.Server.AdminKey, "ADMIN_API_KEY")
	setString(&c.Server.FrontendURL, "FRONTEND_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DSN = v
		if c.Storage.Driver == "" {
			c.Storage.Driver = "postgres"
		}
	}

	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")

	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.BucketName, "MINIO_BUCKET")

	setString(&c.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&c.Stripe.PublishableKey, "STRIPE_PUBLISHABLE_KEY")
	setString(&c.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")

	setString(&c.LiveKit.URL, "LIVEKIT_URL")
	setString(&c.LiveKit.APIKey, "LIVEKIT_API_KEY")
	setString(&c.LiveKit.APISecret, "LIVEKIT_API_SECRET")

	setString(&c.GitHub.ActionsToken, "GH_ACTIONS_TOKEN")
	setString(&c.GitHub.Owner, "GH_OWNER")
	setString(&c.GitHub.Repo, "GH_REPO")

	setString(&c.Environment, "APP_ENV")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = "http://localhost:3000"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 800
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = 0.3
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = 20 * time.Second
	}
	if c.Annotation.MaxInputLength == 0 {
		c.Annotation.MaxInputLength = 10000
	}
	if c.Annotation.ProviderName == "" {
		c.Annotation.ProviderName = "OpenAI"
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
	if c.Stripe.Currency == "" {
		c.Stripe.Currency = "usd"
	}
	if c.LiveKit.TokenTTL == 0 {
		c.LiveKit.TokenTTL = time.Hour
	}
	if c.GitHub.Workflow == "" {
		c.GitHub.Workflow = "run-frontend-agent.yml"
	}
	if c.GitHub.Repo == "" {
		c.GitHub.Repo = "frontend"
	}
	if c.GitHub.Ref == "" {
		c.GitHub.Ref = "main"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "postgres", "mysql", "sqlite":
		if c.StorageDSN() == "" {
			return fmt.Errorf("storage driver %q requires a dsn or database settings", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q (allowed: memory, postgres, mysql, sqlite)", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Annotation.MaxInputLength <= 0 {
		return fmt.Errorf("annotation.maxInputLength must be positive")
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("openai.maxTokens must be positive")
	}
	if c.RateLimit.Capacity <= 0 || c.RateLimit.RefillRate <= 0 {
		return fmt.Errorf("rateLimit capacity and refillRate must be positive")
	}
	return nil
}

// StorageDSN returns the explicit dsn, or one built from the database block.
func (c *Config) StorageDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	switch c.Storage.Driver {
	case "mysql":
		if c.Database.Host == "" {
			return ""
		}
		return c.MySQLDSN()
	case "postgres":
		if c.Database.Host == "" {
			return ""
		}
		return c.PostgresDSN()
	}
	return ""
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

// ArchiveEnabled reports whether object storage is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

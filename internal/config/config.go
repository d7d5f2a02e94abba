package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Estimator EstimatorConfig `yaml:"estimator" mapstructure:"estimator"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Notify    NotifyConfig    `yaml:"notify" mapstructure:"notify"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// EstimatorConfig selects and configures the remote image-analysis backend.
type EstimatorConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	FileField   string `yaml:"file_field" mapstructure:"file_field"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds settings for the vision backend.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PricingConfig locates the pricing document and controls money formatting.
type PricingConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	Currency string `yaml:"currency" mapstructure:"currency"`
	Locale   string `yaml:"locale" mapstructure:"locale"`
}

// StoreConfig configures the session snapshot backend.
type StoreConfig struct {
	Driver          string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL     string `yaml:"database_url" mapstructure:"database_url"`
	SessionTTLHours int    `yaml:"session_ttl_hours" mapstructure:"session_ttl_hours"`
}

// PlacesConfig holds Google Places Autocomplete settings.
type PlacesConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Country   string  `yaml:"country" mapstructure:"country"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// NotifyConfig holds EmailJS confirmation settings.
type NotifyConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	ServiceID  string `yaml:"service_id" mapstructure:"service_id"`
	TemplateID string `yaml:"template_id" mapstructure:"template_id"`
	PublicKey  string `yaml:"public_key" mapstructure:"public_key"`
	PrivateKey string `yaml:"private_key" mapstructure:"private_key"`
}

// ServerConfig configures the HTTP intake server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	UploadRPS      float64  `yaml:"upload_rps" mapstructure:"upload_rps"`
	UploadBurst    int      `yaml:"upload_burst" mapstructure:"upload_burst"`
	MaxUploadMB    int64    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables still win.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GRASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("estimator.backend", "upload")
	v.SetDefault("estimator.base_url", "https://grass-area-api.onrender.com")
	v.SetDefault("estimator.file_field", "files")
	v.SetDefault("estimator.timeout_secs", 0)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 256)
	v.SetDefault("pricing.url", "pricing.json")
	v.SetDefault("pricing.currency", "AUD")
	v.SetDefault("pricing.locale", "en-AU")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "grass.db")
	v.SetDefault("store.session_ttl_hours", 24)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place/autocomplete/json")
	v.SetDefault("places.country", "au")
	v.SetDefault("places.rate_limit", 5)
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.base_url", "https://api.emailjs.com/api/v1.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.upload_rps", 1)
	v.SetDefault("server.upload_burst", 3)
	v.SetDefault("server.max_upload_mb", 25)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "estimate", "serve" and "profile".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for postgres")
		}
	default:
		problems = append(problems, "store.driver must be one of sqlite, postgres, memory")
	}

	checkEstimator := func() {
		if c.Estimator.FileField == "" {
			problems = append(problems, "estimator.file_field is required")
		}
		switch c.Estimator.Backend {
		case "upload":
			if c.Estimator.BaseURL == "" {
				problems = append(problems, "estimator.base_url is required")
			}
		case "anthropic":
			if c.Anthropic.Key == "" {
				problems = append(problems, "anthropic.key is required for the anthropic backend")
			}
		default:
			problems = append(problems, "estimator.backend must be upload or anthropic")
		}
		if c.Notify.Enabled {
			if c.Notify.ServiceID == "" || c.Notify.TemplateID == "" || c.Notify.PublicKey == "" {
				problems = append(problems, "notify.service_id, notify.template_id and notify.public_key are required when notify is enabled")
			}
		}
	}

	switch mode {
	case "profile":
	case "estimate":
		checkEstimator()
	case "serve":
		checkEstimator()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.UploadRPS <= 0 || c.Server.UploadBurst < 1 {
			problems = append(problems, "server.upload_rps must be > 0 and server.upload_burst >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

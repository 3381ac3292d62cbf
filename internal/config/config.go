package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`

	MarketplaceHost string `mapstructure:"MARKETPLACE_HOST"`
	DefaultQuery    string `mapstructure:"DEFAULT_QUERY"`

	BrowserEngine   string `mapstructure:"BROWSER_ENGINE"`
	BrowserHeadless bool   `mapstructure:"BROWSER_HEADLESS"`
	BrowserBin      string `mapstructure:"BROWSER_BIN"`
	UserAgent       string `mapstructure:"USER_AGENT"`

	NavigationTimeout time.Duration `mapstructure:"NAVIGATION_TIMEOUT"`
	ReadinessTimeout  time.Duration `mapstructure:"READINESS_TIMEOUT"`
	CookieTimeout     time.Duration `mapstructure:"COOKIE_TIMEOUT"`
	IdleWait          time.Duration `mapstructure:"IDLE_WAIT"`
	ScrollCycles      int           `mapstructure:"SCROLL_CYCLES"`
	CandidatePool     int           `mapstructure:"CANDIDATE_POOL"`
	MaxProducts       int           `mapstructure:"MAX_PRODUCTS"`

	CaptureBackend string        `mapstructure:"CAPTURE_BACKEND"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	CaptureTTL     time.Duration `mapstructure:"CAPTURE_TTL"`
}

const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional; environment variables are enough in production.
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MARKETPLACE_HOST", "www.amazon.fr")
	v.SetDefault("DEFAULT_QUERY", "smartphone")

	v.SetDefault("BROWSER_ENGINE", EngineChromedp)
	v.SetDefault("BROWSER_HEADLESS", true)
	v.SetDefault("BROWSER_BIN", "")
	v.SetDefault("USER_AGENT", "")

	v.SetDefault("NAVIGATION_TIMEOUT", 30*time.Second)
	v.SetDefault("READINESS_TIMEOUT", 10*time.Second)
	v.SetDefault("COOKIE_TIMEOUT", 10*time.Second)
	v.SetDefault("IDLE_WAIT", 2*time.Second)
	v.SetDefault("SCROLL_CYCLES", 3)
	v.SetDefault("CANDIDATE_POOL", 10)
	v.SetDefault("MAX_PRODUCTS", 5)

	v.SetDefault("CAPTURE_BACKEND", BackendMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CAPTURE_TTL", time.Hour)
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error
	if c.MarketplaceHost == "" {
		errs = append(errs, errors.New("MARKETPLACE_HOST must not be empty"))
	}
	if c.NavigationTimeout <= 0 || c.ReadinessTimeout <= 0 || c.CookieTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.IdleWait < 0 {
		errs = append(errs, errors.New("IDLE_WAIT must not be negative"))
	}
	if c.ScrollCycles < 0 {
		errs = append(errs, errors.New("SCROLL_CYCLES must not be negative"))
	}
	if c.MaxProducts < 1 {
		errs = append(errs, errors.New("MAX_PRODUCTS must be at least 1"))
	}
	if c.CandidatePool < c.MaxProducts {
		errs = append(errs, fmt.Errorf("CANDIDATE_POOL (%d) must be >= MAX_PRODUCTS (%d)", c.CandidatePool, c.MaxProducts))
	}
	switch c.BrowserEngine {
	case EngineChromedp, EngineRod:
	default:
		errs = append(errs, fmt.Errorf("unknown BROWSER_ENGINE %q", c.BrowserEngine))
	}
	switch c.CaptureBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis capture backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CAPTURE_BACKEND %q", c.CaptureBackend))
	}
	return errors.Join(errs...)
}

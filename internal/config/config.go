package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjannette/coinchat/internal/logging"
)

type Config struct {
	// Server
	Port             int    `yaml:"port"`
	CORSAllowOrigin  string `yaml:"cors_allow_origin"`
	RateLimitDelayMS int    `yaml:"rate_limit_delay_ms"`

	// Upstream (CoinGecko)
	CoinGeckoBaseURL       string `yaml:"base_url"`
	CoinGeckoAPIKey        string `yaml:"api_key"`
	VsCurrency             string `yaml:"vs_currency"`
	UpstreamTimeoutSeconds int    `yaml:"timeout_seconds"`
	UpstreamMaxAttempts    int    `yaml:"max_attempts"`

	// Lexicon
	LexiconFile string `yaml:"file"`

	// Notifications
	WebhookURL string `yaml:"webhook_url"`
	BotName    string `yaml:"bot_name"`

	// Logging
	LogLevel  string `yaml:"level"`
	LogFormat string `yaml:"format"`
}

// fileLayout is the YAML file shape; each section decodes into the same
// Config so only keys present in the file overwrite defaults.
type fileLayout struct {
	Server        *Config `yaml:"server"`
	Upstream      *Config `yaml:"upstream"`
	Lexicon       *Config `yaml:"lexicon"`
	Notifications *Config `yaml:"notifications"`
	Logging       *Config `yaml:"logging"`
}

func defaults() *Config {
	return &Config{
		Port:                   3000,
		CORSAllowOrigin:        "*",
		RateLimitDelayMS:       1000,
		CoinGeckoBaseURL:       "https://api.coingecko.com/api/v3",
		VsCurrency:             "inr",
		UpstreamTimeoutSeconds: 10,
		UpstreamMaxAttempts:    1,
		BotName:                "CoinChat",
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load resolves configuration from defaults, then the optional YAML file at
// path, then .env, then the process environment. Later sources win.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		layout := fileLayout{Server: cfg, Upstream: cfg, Lexicon: cfg, Notifications: cfg, Logging: cfg}
		if err := yaml.Unmarshal(data, &layout); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	_ = godotenv.Load()

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.CORSAllowOrigin = envStr("CORS_ALLOW_ORIGIN", cfg.CORSAllowOrigin)
	cfg.RateLimitDelayMS = envInt("RATE_LIMIT_DELAY_MS", cfg.RateLimitDelayMS)

	cfg.CoinGeckoBaseURL = envStr("COINGECKO_BASE_URL", cfg.CoinGeckoBaseURL)
	cfg.CoinGeckoAPIKey = envStr("COINGECKO_API_KEY", cfg.CoinGeckoAPIKey)
	cfg.VsCurrency = strings.ToLower(envStr("VS_CURRENCY", cfg.VsCurrency))
	cfg.UpstreamTimeoutSeconds = envInt("UPSTREAM_TIMEOUT_SECONDS", cfg.UpstreamTimeoutSeconds)
	cfg.UpstreamMaxAttempts = envInt("UPSTREAM_MAX_ATTEMPTS", cfg.UpstreamMaxAttempts)

	cfg.LexiconFile = envStr("LEXICON_FILE", cfg.LexiconFile)

	cfg.WebhookURL = envStr("WEBHOOK_URL", cfg.WebhookURL)
	cfg.BotName = envStr("BOT_NAME", cfg.BotName)

	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envStr("LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.RateLimitDelayMS < 0 {
		errs = append(errs, "RATE_LIMIT_DELAY_MS must not be negative")
	}
	if u, err := url.Parse(c.CoinGeckoBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("COINGECKO_BASE_URL is not an absolute URL: %q", c.CoinGeckoBaseURL))
	}
	if c.VsCurrency == "" {
		errs = append(errs, "VS_CURRENCY is required")
	}
	if c.UpstreamTimeoutSeconds <= 0 {
		errs = append(errs, "UPSTREAM_TIMEOUT_SECONDS must be positive")
	}
	if c.UpstreamMaxAttempts < 1 {
		errs = append(errs, "UPSTREAM_MAX_ATTEMPTS must be at least 1")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, "LOG_LEVEL: "+err.Error())
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, "LOG_FORMAT: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Warnings lists settings that are valid but probably unintended.
func (c *Config) Warnings() []string {
	var out []string
	if c.CoinGeckoAPIKey == "" {
		out = append(out, "COINGECKO_API_KEY not set, using the keyless public tier")
	}
	if c.RateLimitDelayMS == 0 {
		out = append(out, "RATE_LIMIT_DELAY_MS is 0, chat requests are not throttled")
	}
	return out
}

func (c *Config) Print(log *logging.Logger) {
	log.Infof("=== CoinChat Configuration ===")
	log.Infof("Port: %d", c.Port)
	log.Infof("CORS origin: %s", c.CORSAllowOrigin)
	log.Infof("Chat throttle: one request per %s per client", c.RateLimitDelay())
	log.Infof("Upstream: %s (key %s)", c.CoinGeckoBaseURL, boolLabel(c.CoinGeckoAPIKey != "", "configured", "not set"))
	log.Infof("Vs currency: %s", strings.ToUpper(c.VsCurrency))
	log.Infof("Upstream timeout: %s, attempts: %d", c.UpstreamTimeout(), c.UpstreamMaxAttempts)
	log.Infof("Alias file: %s", boolLabel(c.LexiconFile != "", c.LexiconFile, "built-in only"))
	log.Infof("Incident webhook: %s", boolLabel(c.WebhookURL != "", "enabled", "disabled"))
	for _, w := range c.Warnings() {
		log.Warnf("%s", w)
	}
}

func (c *Config) RateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitDelayMS) * time.Millisecond
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

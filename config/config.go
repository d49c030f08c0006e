package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"

	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"
)

type Config struct {
	ListenAddress string `yaml:"listen_address"`

	// APIKeys are tried in order on every upstream call.
	APIKeys        []string      `yaml:"api_keys"`
	VisionEndpoint string        `yaml:"vision_endpoint"`
	TextEndpoint   string        `yaml:"text_endpoint"`
	Transport      string        `yaml:"transport"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		ListenAddress:  ":5000",
		VisionEndpoint: DefaultEndpoint,
		TextEndpoint:   DefaultEndpoint,
		Transport:      TransportREST,
		RequestTimeout: 30 * time.Second,
		PingInterval:   15 * time.Second,
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
	}
}

// Load reads path (optional) over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		cfg.APIKeys = splitList(v)
	}
	if v := os.Getenv("GEMINI_VISION_URL"); v != "" {
		cfg.VisionEndpoint = v
	}
	if v := os.Getenv("GEMINI_TEXT_URL"); v != "" {
		cfg.TextEndpoint = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddress = ":" + v
	}
	if v := os.Getenv("ANALYZER_LISTEN_ADDRESS"); v != "" {
		cfg.ListenAddress = v
	}
	if v := os.Getenv("ANALYZER_TRANSPORT"); v != "" {
		cfg.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("ANALYZER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("ANALYZER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ANALYZER_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.APIKeys) == 0 {
		errs = append(errs, errors.New("at least one API key is required"))
	}
	for i, k := range c.APIKeys {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("API key %d is empty", i+1))
		}
	}
	if c.VisionEndpoint == "" || c.TextEndpoint == "" {
		errs = append(errs, errors.New("endpoints must not be empty"))
	}
	if c.Transport != TransportREST && c.Transport != TransportSDK {
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the logrus level, info when unparseable.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	if c.Debug && lvl < log.DebugLevel {
		return log.DebugLevel
	}
	return lvl
}

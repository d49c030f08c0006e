package config

import (
	"os"
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"
)

const PathEnv = "ANALYZER_CONFIG"

var (
	mu        sync.RWMutex
	current   = Default()
	path      string
	callbacks []func()
)

// Init loads the configuration from $ANALYZER_CONFIG (if set) and the
// environment, and makes it the process-wide configuration.
func Init() error {
	p := os.Getenv(PathEnv)
	cfg, err := Load(p)
	if err != nil {
		return err
	}
	mu.Lock()
	path = p
	current = cfg
	mu.Unlock()
	notify()
	return nil
}

// ReadConfig returns a copy of the current configuration.
func ReadConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	cfg := *current
	cfg.APIKeys = slices.Clone(current.APIKeys)
	cfg.AllowedOrigins = slices.Clone(current.AllowedOrigins)
	return cfg
}

// Set replaces the process-wide configuration. Meant for tests and
// embedders that build a Config themselves.
func Set(cfg *Config) {
	mu.Lock()
	current = cfg
	mu.Unlock()
	notify()
}

func GetLogLevel() log.Level {
	mu.RLock()
	defer mu.RUnlock()
	return current.Level()
}

func GetIsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return current.Debug
}

func AddConfigChangeCallback(cb func()) {
	mu.Lock()
	defer mu.Unlock()
	callbacks = append(callbacks, cb)
}

func notify() {
	mu.RLock()
	cbs := slices.Clone(callbacks)
	mu.RUnlock()
	for _, cb := range cbs {
		cb()
	}
}

// reload re-reads the file. Only log level and debug are applied, the
// key list and endpoints are fixed for the life of the process.
func reload() error {
	mu.RLock()
	p := path
	mu.RUnlock()

	next, err := Load(p)
	if err != nil {
		return err
	}

	mu.Lock()
	if !slices.Equal(next.APIKeys, current.APIKeys) ||
		next.VisionEndpoint != current.VisionEndpoint ||
		next.TextEndpoint != current.TextEndpoint ||
		next.Transport != current.Transport ||
		next.ListenAddress != current.ListenAddress {
		log.Warnf("config %s: credential, endpoint or listener changes require a restart", p)
	}
	updated := *current
	updated.LogLevel = next.LogLevel
	updated.Debug = next.Debug
	current = &updated
	mu.Unlock()

	notify()
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/ledger"
)

// Config is the resolved sessiondeck configuration.
type Config struct {
	Path         string // resolved file path, even when the file is absent
	Environment  string
	Environments map[string]EnvironmentConfig
	Ledger       LedgerConfig
	PollInterval time.Duration
	CacheMaxAge  time.Duration
	LogLevel     string
	LogFile      string
	MetricsAddr  string
}

// EnvironmentConfig is one named API deployment.
type EnvironmentConfig struct {
	BaseURL  string `toml:"base_url"`
	News     string `toml:"news"`
	Featured string `toml:"featured"`
	Contents string `toml:"contents"`
	Videos   string `toml:"videos"`
	Live     string `toml:"live"`
}

// LedgerConfig configures the sync pipeline. An empty URL disables it.
type LedgerConfig struct {
	URL     string
	Events  []string
	Stagger time.Duration
}

const (
	defaultConfigPath  = "~/.config/sessiondeck/config.toml"
	defaultLogFile     = "~/.local/share/sessiondeck/sessiondeck.log"
	defaultEnvironment = "production"
	defaultBaseURL     = "http://127.0.0.1:7480"
	defaultPoll        = 30 * time.Second
	defaultCacheMaxAge = 5 * time.Minute
)

type rawConfig struct {
	Environment  string                       `toml:"environment"`
	Environments map[string]EnvironmentConfig `toml:"environments"`
	Ledger       struct {
		URL            string   `toml:"url"`
		Events         []string `toml:"events"`
		StaggerSeconds *int     `toml:"stagger_seconds"`
	} `toml:"ledger"`
	PollSeconds        int    `toml:"poll_seconds"`
	CacheMaxAgeSeconds *int   `toml:"cache_max_age_seconds"`
	LogLevel           string `toml:"log_level"`
	LogFile            string `toml:"log_file"`
	MetricsAddr        string `toml:"metrics_addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Environment: defaultEnvironment,
		Environments: map[string]EnvironmentConfig{
			defaultEnvironment: {BaseURL: defaultBaseURL},
		},
		Ledger: LedgerConfig{
			Events:  append([]string(nil), ledger.DefaultEvents...),
			Stagger: ledger.DefaultStagger,
		},
		PollInterval: defaultPoll,
		CacheMaxAge:  defaultCacheMaxAge,
		LogLevel:     "info",
		LogFile:      mustExpand(defaultLogFile),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(bytes, cfg)
}

func parse(bytes []byte, cfg Config) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if len(raw.Environments) > 0 {
		cfg.Environments = make(map[string]EnvironmentConfig, len(raw.Environments))
		for name, env := range raw.Environments {
			name = strings.TrimSpace(name)
			env.BaseURL = strings.TrimSpace(env.BaseURL)
			cfg.Environments[name] = env
		}
	}
	if name := strings.TrimSpace(raw.Environment); name != "" {
		cfg.Environment = name
	} else if _, ok := cfg.Environments[cfg.Environment]; !ok {
		cfg.Environment = cfg.EnvironmentNames()[0]
	}
	if _, ok := cfg.Environments[cfg.Environment]; !ok {
		return Config{}, fmt.Errorf("environment %q is not defined", cfg.Environment)
	}
	for _, name := range cfg.EnvironmentNames() {
		if _, err := cfg.ResolveEnvironment(name); err != nil {
			return Config{}, err
		}
	}

	cfg.Ledger.URL = strings.TrimSpace(raw.Ledger.URL)
	if events := trimAll(raw.Ledger.Events); len(events) > 0 {
		cfg.Ledger.Events = events
	}
	if raw.Ledger.StaggerSeconds != nil {
		if *raw.Ledger.StaggerSeconds < 0 {
			return Config{}, fmt.Errorf("ledger.stagger_seconds must not be negative")
		}
		cfg.Ledger.Stagger = time.Duration(*raw.Ledger.StaggerSeconds) * time.Second
	}

	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.CacheMaxAgeSeconds != nil && *raw.CacheMaxAgeSeconds >= 0 {
		cfg.CacheMaxAge = time.Duration(*raw.CacheMaxAgeSeconds) * time.Second
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = level
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	return cfg, nil
}

// EnvironmentNames returns the defined environment names, sorted.
func (c Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveEnvironment builds the API environment called name.
func (c Config) ResolveEnvironment(name string) (api.Environment, error) {
	env, ok := c.Environments[name]
	if !ok {
		return api.Environment{}, fmt.Errorf("environment %q is not defined", name)
	}
	return api.NewEnvironment(name, env.BaseURL, map[api.Endpoint]string{
		api.News:             env.News,
		api.FeaturedSections: env.Featured,
		api.Contents:         env.Contents,
		api.Videos:           env.Videos,
		api.LiveVideoAssets:  env.Live,
	})
}

// CurrentEnvironment resolves the selected environment.
func (c Config) CurrentEnvironment() (api.Environment, error) {
	return c.ResolveEnvironment(c.Environment)
}

// NextEnvironment returns the name following current in sorted order, wrapping.
func (c Config) NextEnvironment(current string) string {
	names := c.EnvironmentNames()
	if len(names) == 0 {
		return current
	}
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// SyncEnabled reports whether a ledger is configured.
func (c Config) SyncEnabled() bool {
	return c.Ledger.URL != ""
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the client settings read from the config file and environment.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	CacheDir       string        `yaml:"cache_dir"`
	DBPath         string        `yaml:"db_path"`
	LogPath        string        `yaml:"log_path"`
	LogLevel       string        `yaml:"log_level"`
	Token          string        `yaml:"-"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RetryMax       int           `yaml:"retry_max"`
	ThreadDepth    int           `yaml:"thread_depth"`
	UserTTL        time.Duration `yaml:"user_ttl"`
	// Style is the glamour style for descriptions: dark, light or notty.
	Style string `yaml:"style"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "panelist")
	return Config{
		BaseURL:        "http://localhost:6060/api",
		CacheDir:       cacheDir,
		DBPath:         filepath.Join(cacheDir, "panelist.db"),
		LogPath:        filepath.Join(cacheDir, "debug.log"),
		LogLevel:       "info",
		RequestTimeout: 10 * time.Second,
		RetryMax:       0,
		ThreadDepth:    3,
		UserTTL:        5 * time.Minute,
		Style:          "dark",
	}
}

// Load returns the defaults overlaid with the YAML file at path (if it
// exists) and then with PANELIST_* environment variables. A .env file in the
// working directory is read first; variables already set in the environment
// win over it.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return cfg, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Save writes the config as YAML. The token is never written.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects settings the loaders cannot work with.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must be set")
	}
	if c.ThreadDepth < 0 {
		return fmt.Errorf("thread_depth must be >= 0, got %d", c.ThreadDepth)
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("retry_max must be >= 0, got %d", c.RetryMax)
	}
	switch c.Style {
	case "dark", "light", "notty":
	default:
		return fmt.Errorf("style must be dark, light or notty, got %q", c.Style)
	}
	return nil
}

// DefaultPath is where the CLI looks for a config file.
func DefaultPath() string {
	return filepath.Join(userConfigDir(), "panelist", "config.yaml")
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PANELIST_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PANELIST_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("PANELIST_STYLE"); v != "" {
		c.Style = v
	}
	if v := os.Getenv("PANELIST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PANELIST_THREAD_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PANELIST_THREAD_DEPTH: %w", err)
		}
		c.ThreadDepth = n
	}
	if v := os.Getenv("PANELIST_RETRY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PANELIST_RETRY_MAX: %w", err)
		}
		c.RetryMax = n
	}
	return nil
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

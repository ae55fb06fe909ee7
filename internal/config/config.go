package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int
	DBPath   string
	APIKey   string
	LogLevel string
	// Notes
	NoteDirs      []string
	IndexPath     string
	CategoryOrder []string
	AutoScan      bool
	// Link checking
	ExternalChecks  bool
	CheckTimeoutSec int
	CheckWorkers    int
	// Search tuning
	DefaultMinScore   float64
	DefaultMaxResults int
	RecencyBoost      float64
	// Tangle
	TangleOutDir string
}

// fileConfig is the optional lanyard.yaml sitting next to the notes.
type fileConfig struct {
	NoteDirs      []string `yaml:"noteDirs"`
	IndexPath     string   `yaml:"indexPath"`
	Categories    []string `yaml:"categories"`
	TangleOutDir  string   `yaml:"tangleOutDir"`
	ExternalLinks bool     `yaml:"externalLinks"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              envInt("PORT", 8468),
		DBPath:            envStr("LANYARD_DB_PATH", defaultDBPath()),
		APIKey:            envStr("LANYARD_API_KEY", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		NoteDirs:          envDirs("LANYARD_NOTE_DIRS"),
		IndexPath:         envStr("LANYARD_INDEX_PATH", "README.md"),
		AutoScan:          envBool("LANYARD_AUTO_SCAN", true),
		ExternalChecks:    envBool("LANYARD_EXTERNAL_CHECKS", false),
		CheckTimeoutSec:   envInt("LANYARD_CHECK_TIMEOUT_SEC", 10),
		CheckWorkers:      envInt("LANYARD_CHECK_WORKERS", 8),
		DefaultMinScore:   envFloat("DEFAULT_MIN_SCORE", 0.1),
		DefaultMaxResults: envInt("DEFAULT_MAX_RESULTS", 10),
		RecencyBoost:      envFloat("RECENCY_BOOST", 0.1),
		TangleOutDir:      envStr("LANYARD_TANGLE_OUT", "demo"),
	}

	if path := configFilePath(); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// mergeFile overlays lanyard.yaml values. Env vars win for scalar settings;
// the file wins for note dirs and category order since those describe the
// notebook, not the deployment.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	base := filepath.Dir(path)
	for _, d := range fc.NoteDirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(base, d)
		}
		c.NoteDirs = append(c.NoteDirs, d)
	}
	if fc.IndexPath != "" && os.Getenv("LANYARD_INDEX_PATH") == "" {
		c.IndexPath = fc.IndexPath
	}
	if fc.TangleOutDir != "" && os.Getenv("LANYARD_TANGLE_OUT") == "" {
		c.TangleOutDir = fc.TangleOutDir
	}
	if fc.ExternalLinks {
		c.ExternalChecks = true
	}
	c.CategoryOrder = fc.Categories
	return nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("LANYARD_DB_PATH must not be empty")
	}
	if len(c.NoteDirs) == 0 {
		return fmt.Errorf("no note directories configured (set LANYARD_NOTE_DIRS or add noteDirs to lanyard.yaml)")
	}
	if c.CheckWorkers < 1 {
		return fmt.Errorf("LANYARD_CHECK_WORKERS must be positive, got %d", c.CheckWorkers)
	}
	return nil
}

func configFilePath() string {
	if v := os.Getenv("LANYARD_CONFIG"); v != "" {
		return v
	}
	if _, err := os.Stat("lanyard.yaml"); err == nil {
		return "lanyard.yaml"
	}
	return ""
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lanyard.db"
	}
	return filepath.Join(home, ".lanyard", "lanyard.db")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDirs(key string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		var dirs []string
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				dirs = append(dirs, p)
			}
		}
		return dirs
	}
	return nil
}

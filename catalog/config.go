package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level wikidict configuration.
type Config struct {
	Cache    CacheConfig  `yaml:"cache"`
	Fetch    FetchConfig  `yaml:"fetch"`
	Sanitize bool         `yaml:"sanitize"`
	Wikis    []WikiConfig `yaml:"wikis"`
	Forvo    ForvoConfig  `yaml:"forvo"`
}

// CacheConfig controls the SQLite article cache. An empty path disables
// caching.
type CacheConfig struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

// FetchConfig controls the HTTP transport.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// WikiConfig defines one MediaWiki source.
type WikiConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled *bool  `yaml:"enabled"` // nil means enabled
}

// ForvoConfig defines the Forvo pronunciation sources, one per language.
type ForvoConfig struct {
	APIKey    string   `yaml:"api_key"`
	Languages []string `yaml:"languages"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults. LoadConfig calls it;
// callers building a Config in code should too.
func (c *Config) ApplyDefaults() {
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "wikidict/1.0"
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool)
	for i, w := range c.Wikis {
		if w.ID == "" || w.URL == "" {
			return fmt.Errorf("wikis[%d]: id and url are required", i)
		}
		if seen[w.ID] {
			return fmt.Errorf("wikis[%d]: duplicate id %q", i, w.ID)
		}
		seen[w.ID] = true
	}
	return nil
}

// enabled reports whether a wiki entry should be loaded.
func (w WikiConfig) enabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// Package config loads and validates the plansync TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like "30s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	Bitbucket Bitbucket `toml:"bitbucket"`
	Cache     Cache     `toml:"cache"`
	Sync      Sync      `toml:"sync"`
}

type Bitbucket struct {
	BaseURL  string   `toml:"base_url"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
	Timeout  Duration `toml:"timeout"`
}

type Cache struct {
	Dir string `toml:"dir"`
}

type Sync struct {
	Prefixes       []string `toml:"prefixes"`        // default: every tracker declared in the document
	MilestoneChain bool     `toml:"milestone_chain"` // chain new milestones onto the previous one
}

// DefaultPath returns the conventional location of the plansync config file.
func DefaultPath() string {
	return ExpandHome("~/.config/plansync/config.toml")
}

// Load reads and validates a plansync TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bitbucket.BaseURL == "" {
		cfg.Bitbucket.BaseURL = "https://bitbucket.org/api/1.0"
	}
	if cfg.Bitbucket.Timeout.Duration == 0 {
		cfg.Bitbucket.Timeout.Duration = 30 * time.Second
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "~/.cache/plansync"
	}
	cfg.Cache.Dir = ExpandHome(cfg.Cache.Dir)
}

func validate(cfg *Config) error {
	if cfg.Bitbucket.Username == "" {
		return fmt.Errorf("bitbucket.username is required")
	}
	if cfg.Bitbucket.Password == "" {
		return fmt.Errorf("bitbucket.password is required")
	}
	if cfg.Bitbucket.Timeout.Duration < 0 {
		return fmt.Errorf("bitbucket.timeout must not be negative")
	}

	seen := make(map[string]struct{}, len(cfg.Sync.Prefixes))
	for _, prefix := range cfg.Sync.Prefixes {
		if prefix == "" {
			return fmt.Errorf("sync.prefixes must not contain empty entries")
		}
		if _, ok := seen[prefix]; ok {
			return fmt.Errorf("sync.prefixes lists %q more than once", prefix)
		}
		seen[prefix] = struct{}{}
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Format selects the record layout of a store.
type Format string

const (
	// FormatUpdates stores <CATEGORY>-<id> records with YYYY-MM-DD dates.
	FormatUpdates Format = "updates"
	// FormatSignals stores sig-<source>-<yyyymmdd>-<seq> records with RFC3339 dates.
	FormatSignals Format = "signals"
)

const (
	SourceTypeYouTube = "youtube"
	SourceTypeRSS     = "rss"
)

// Store is one JSON file and its retention policy.
type Store struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Format Format `yaml:"format"`
	Retain int    `yaml:"retain,omitempty"`
}

// Source is one upstream feed feeding a store.
type Source struct {
	Name      string `yaml:"name"`
	Store     string `yaml:"store"`
	Type      string `yaml:"type"`
	Source    string `yaml:"source"`
	Category  string `yaml:"category,omitempty"`
	Kind      string `yaml:"kind,omitempty"`
	ChannelID string `yaml:"channel_id,omitempty"`
	Handle    string `yaml:"handle,omitempty"`
	URL       string `yaml:"url,omitempty"`
	URLEnv    string `yaml:"url_env,omitempty"`
	Enabled   bool   `yaml:"enabled"`
}

// HasChannelID reports whether a real (non-placeholder) channel id is set.
func (s Source) HasChannelID() bool {
	return s.ChannelID != "" && !strings.Contains(s.ChannelID, "PLACEHOLDER")
}

type Config struct {
	LogLevel            string   `yaml:"log_level"`
	DataDir             string   `yaml:"data_dir"`
	FetchTimeout        string   `yaml:"fetch_timeout"`
	Observer            string   `yaml:"observer"`
	EnableSync          bool     `yaml:"enable_sync"`
	EnableXPost         bool     `yaml:"enable_x_post"`
	LedgerPath          string   `yaml:"ledger_path,omitempty"`
	MaxItemsPerCategory int      `yaml:"max_items_per_category"`
	Stores              []Store  `yaml:"stores"`
	Sources             []Source `yaml:"sources"`
}

// LookupEnv resolves environment values. os.LookupEnv satisfies it.
type LookupEnv func(key string) (string, bool)

func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Retention returns the cap for a store. Signals stores default to 50,
// updates stores to max_items_per_category * 4.
func (c *Config) Retention(s Store) int {
	if s.Retain > 0 {
		return s.Retain
	}
	if s.Format == FormatSignals {
		return 50
	}
	perCategory := c.MaxItemsPerCategory
	if perCategory <= 0 {
		perCategory = 20
	}
	return perCategory * 4
}

// StorePath resolves a store path against data_dir.
func (c *Config) StorePath(s Store) string {
	if filepath.IsAbs(s.Path) || c.DataDir == "" {
		return s.Path
	}
	return filepath.Join(c.DataDir, s.Path)
}

func (c *Config) StoreByName(name string) (Store, bool) {
	for _, s := range c.Stores {
		if s.Name == name {
			return s, true
		}
	}
	return Store{}, false
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// SourcesFor returns the enabled sources writing into the named store.
func (c *Config) SourcesFor(store string) []Source {
	var out []Source
	for _, s := range c.EnabledSources() {
		if s.Store == store {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

// LedgerFile returns the ledger database path.
func (c *Config) LedgerFile() string {
	if c.LedgerPath != "" {
		return c.LedgerPath
	}
	return filepath.Join(xdg.CacheHome, "celestial", "ledger.db")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "celestial", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (or the default location), loads .env from
// the working directory and applies environment overrides from the process
// environment.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment. It never writes files.
func LoadWithEnv(path string, env LookupEnv) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := defaults
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		mergeDefaults(&fileCfg, defaults)
		cfg = &fileCfg
	case os.IsNotExist(err):
		// Embedded defaults.
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if env != nil {
		applyEnvOverrides(cfg, env)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeDefaults fills unset scalars from defaults, appends default stores the
// user did not define, and uses default sources only when none are given.
func mergeDefaults(cfg, defaults *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.FetchTimeout == "" {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.Observer == "" {
		cfg.Observer = defaults.Observer
	}
	if cfg.MaxItemsPerCategory <= 0 {
		cfg.MaxItemsPerCategory = defaults.MaxItemsPerCategory
	}

	have := make(map[string]bool, len(cfg.Stores))
	for _, s := range cfg.Stores {
		have[s.Name] = true
	}
	for _, s := range defaults.Stores {
		if !have[s.Name] {
			cfg.Stores = append(cfg.Stores, s)
		}
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = append([]Source(nil), defaults.Sources...)
	}
}

func applyEnvOverrides(cfg *Config, env LookupEnv) {
	if v, ok := env("ENABLE_SYNC"); ok {
		cfg.EnableSync = parseFlag(v)
	}
	if v, ok := env("ENABLE_X_POST"); ok {
		cfg.EnableXPost = parseFlag(v)
	}
	if v, ok := env("CELESTIAL_DATA_DIR"); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := env("CELESTIAL_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := env("CELESTIAL_LEDGER_PATH"); ok && v != "" {
		cfg.LedgerPath = v
	}
	for i := range cfg.Sources {
		key := cfg.Sources[i].URLEnv
		if key == "" {
			continue
		}
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			cfg.Sources[i].URL = strings.TrimSpace(v)
		}
	}
}

// parseFlag treats anything but a recognised true value as off.
func parseFlag(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func validate(cfg *Config) error {
	validFormats := map[Format]bool{FormatUpdates: true, FormatSignals: true}
	stores := make(map[string]bool, len(cfg.Stores))
	for i, s := range cfg.Stores {
		if s.Name == "" {
			return fmt.Errorf("store %d: name is required", i)
		}
		if stores[s.Name] {
			return fmt.Errorf("store %q: defined more than once", s.Name)
		}
		stores[s.Name] = true
		if s.Path == "" {
			return fmt.Errorf("store %q: path is required", s.Name)
		}
		if !validFormats[s.Format] {
			return fmt.Errorf("store %q: unknown format %q (valid: updates, signals)", s.Name, s.Format)
		}
		if s.Retain < 0 {
			return fmt.Errorf("store %q: retain must not be negative", s.Name)
		}
	}

	validTypes := map[string]bool{SourceTypeYouTube: true, SourceTypeRSS: true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if !stores[s.Store] {
			return fmt.Errorf("source %q: unknown store %q", s.Name, s.Store)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: youtube, rss)", s.Name, s.Type)
		}
		for _, raw := range []string{s.URL, s.Handle} {
			if raw == "" {
				continue
			}
			u, err := url.Parse(raw)
			if err != nil {
				return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
			}
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"tickerfeed/internal/filter"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration shared by the feed client and the
// development server.
type Config struct {
	Client  Client  `yaml:"client"`
	Filters Filters `yaml:"filters"`
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Client configures the terminal feed client.
type Client struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	PageSize       int           `yaml:"page_size" validate:"min=1,max=200"`
	MaxPosts       int           `yaml:"max_posts" validate:"gtefield=PageSize"`
	Debounce       time.Duration `yaml:"debounce"`
	Timeout        time.Duration `yaml:"timeout"`
	PrefetchMargin int           `yaml:"prefetch_margin" validate:"min=0"`
	LogPath        string        `yaml:"log_path"`
}

// Filters lists the options offered by the filter pane.
type Filters struct {
	Accounts []string `yaml:"accounts"`
	Sectors  []Sector `yaml:"sectors" validate:"dive"`
}

// Sector is a parent sector with its sub-sectors.
type Sector struct {
	Name       string   `yaml:"name" validate:"required"`
	SubSectors []string `yaml:"sub_sectors"`
}

// Server holds the development server listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=0,max=65535"`
}

// Storage holds paths for the development server's data.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
	FixtureDir string `yaml:"fixture_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// SectorGroups converts the configured sectors for filter.NewSectorTree.
func (f Filters) SectorGroups() []filter.SectorGroup {
	out := make([]filter.SectorGroup, len(f.Sectors))
	for i, s := range f.Sectors {
		out[i] = filter.SectorGroup{Name: s.Name, SubSectors: s.SubSectors}
	}
	return out
}

// Addr returns host:port for the development server.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, applies
// environment variable overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration usable without a file.
func Default() *Config {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:8090"
	}
	if c.Client.PageSize == 0 {
		c.Client.PageSize = 50
	}
	if c.Client.MaxPosts == 0 {
		c.Client.MaxPosts = 200
	}
	if c.Client.Debounce == 0 {
		c.Client.Debounce = 250 * time.Millisecond
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 30 * time.Second
	}
	if c.Client.PrefetchMargin == 0 {
		c.Client.PrefetchMargin = 3
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/tickerfeed.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks field constraints and the sector hierarchy.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := filter.NewSectorTree(c.Filters.SectorGroups()); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		cfg.Client.BaseURL = v
	}

	if v := os.Getenv("FEED_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Client.PageSize = n
		}
	}

	if v := os.Getenv("FEED_LOG_PATH"); v != "" {
		cfg.Client.LogPath = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("FIXTURE_DIR"); v != "" {
		cfg.Storage.FixtureDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

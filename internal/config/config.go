package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tasnim.dev/cloudspend/internal/logging"
	"tasnim.dev/cloudspend/internal/spend"
)

// DefaultSource is used when neither the config, the environment nor a flag
// names one.
const DefaultSource = "http://localhost:5000/api/spend"

const (
	defaultRefreshInterval = 15 * time.Second
	minRefreshInterval     = 5 * time.Second
)

// Config holds optional defaults loaded from ~/.config/cloudspend/config.yaml.
type Config struct {
	DefaultProfile string   `yaml:"default_profile"`
	DefaultRegion  string   `yaml:"default_region"`
	Sources        []string `yaml:"sources"`
	PageSize       int      `yaml:"page_size"`
	DefaultSort    string   `yaml:"default_sort"`

	AutoRefresh bool `yaml:"auto_refresh"`
	// AutoRefreshInterval is in seconds.
	AutoRefreshInterval int `yaml:"auto_refresh_interval"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	GoogleCredentialsFile string `yaml:"google_credentials_file"`
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cloudspend", "config.yaml"), nil
}

// Load reads the config file. Returns zero-value Config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from CLOUDSPEND_* variables. CLOUDSPEND_SOURCE is
// a comma separated list.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("CLOUDSPEND_SOURCE")); v != "" {
		c.Sources = splitList(v)
	}
	if v := strings.TrimSpace(getenv("CLOUDSPEND_PAGE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLOUDSPEND_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	if v := strings.TrimSpace(getenv("CLOUDSPEND_LOG_FILE")); v != "" {
		c.LogFile = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Merge applies CLI flag overrides. Flags take precedence over config defaults.
func (c *Config) Merge(profile, region string) (string, string) {
	p := c.DefaultProfile
	if profile != "" {
		p = profile
	}
	r := c.DefaultRegion
	if region != "" {
		r = region
	}
	return p, r
}

// SourceList returns the flag sources when given, else the configured ones,
// else DefaultSource.
func (c *Config) SourceList(flags []string) []string {
	if len(flags) > 0 {
		return flags
	}
	if len(c.Sources) > 0 {
		return c.Sources
	}
	return []string{DefaultSource}
}

// PageSizeOrDefault returns the configured page size or spend.DefaultPageSize.
func (c *Config) PageSizeOrDefault() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return spend.DefaultPageSize
}

// Sort parses DefaultSort; empty means spend.DefaultSort.
func (c *Config) Sort() (spend.SortSpec, error) {
	return spend.ParseSortSpec(c.DefaultSort)
}

// RefreshInterval returns the auto-refresh period, never below five seconds.
func (c *Config) RefreshInterval() time.Duration {
	if c.AutoRefreshInterval <= 0 {
		return defaultRefreshInterval
	}
	d := time.Duration(c.AutoRefreshInterval) * time.Second
	if d < minRefreshInterval {
		return minRefreshInterval
	}
	return d
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.PageSize != 0 && !slices.Contains(spend.PageSizes, c.PageSize) {
		errs = append(errs, fmt.Errorf("page_size %d: must be one of %v", c.PageSize, spend.PageSizes))
	}
	if _, err := c.Sort(); err != nil {
		errs = append(errs, fmt.Errorf("default_sort: %w", err))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.AutoRefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("auto_refresh_interval %d: must not be negative", c.AutoRefreshInterval))
	}
	for _, s := range c.Sources {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, errors.New("sources: empty entry"))
			break
		}
	}
	return errors.Join(errs...)
}

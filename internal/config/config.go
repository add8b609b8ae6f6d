// Package config provides configuration loading and validation for the
// nameres CLI. It handles reading configuration from files, providing
// defaults, and ensuring all required settings are properly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cachefs/nameres/internal/filesys"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoConfig is returned when the configuration file is not found.
	ErrNoConfig = errors.New("configuration file not found")
)

const (
	// DefaultConfigPath is the default path for the configuration file,
	// relative to the user's home directory.
	DefaultConfigPath = ".nameres/config.yaml"
	// DefaultTimeout is the default per-attempt query timeout.
	DefaultTimeout = 2 * time.Second
	// DefaultRetries is the default number of additional attempts per query.
	DefaultRetries = 1

	// ModeDNS selects the network resolver backend.
	ModeDNS = "dns"
	// ModeHostfile selects the hosts-file backend.
	ModeHostfile = "hostfile"
)

// Config holds the application configuration.
type Config struct {
	Resolver ResolverConfig `yaml:"resolver"`
}

// ResolverConfig holds resolver-related configuration.
type ResolverConfig struct {
	Mode          string        `yaml:"mode"`
	Nameservers   []string      `yaml:"nameservers"`
	SearchDomains []string      `yaml:"search_domains"`
	Timeout       time.Duration `yaml:"timeout"`
	Retries       uint          `yaml:"retries"`
	IPv4Only      bool          `yaml:"ipv4_only"`
	HostsFile     string        `yaml:"hosts_file"`
}

// Provider defines the interface for loading and persisting configuration.
type Provider interface {
	Load() (*Config, error)
	Save(*Config) error
}

// FSProvider implements Provider using the local filesystem.
type FSProvider struct {
	fs   filesys.ReadWriteFS
	path string
}

var _ Provider = (*FSProvider)(nil)

// New creates a configuration provider using the default configuration
// path under the user's home directory. If the home directory cannot be
// determined the path resolves relative to the current directory.
func New() Provider {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not determine home directory: %v\n", err)
		home = ""
	}
	return NewWithPath(filesys.OS(), filepath.Join(home, DefaultConfigPath))
}

// NewWithPath creates a provider with a specific filesystem and config path.
func NewWithPath(fs filesys.ReadWriteFS, path string) Provider {
	return &FSProvider{
		fs:   fs,
		path: path,
	}
}

// Default returns a default configuration with preset values. This is used
// when no configuration file exists: the network backend with system name
// servers and search domains.
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			Mode:    ModeDNS,
			Timeout: DefaultTimeout,
			Retries: DefaultRetries,
		},
	}
}

// Load loads the configuration from the provider's path, falling back to
// Default when no file exists.
func (p *FSProvider) Load() (*Config, error) {
	_ = p.ensureConfigDir()

	cfg, err := p.loadAndParse()
	if err != nil {
		if errors.Is(err, ErrNoConfig) {
			return Default(), nil
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Save validates cfg and writes it to the provider's path in YAML form,
// creating the config directory if needed. Used by "nameres config init" to
// persist the defaults for editing.
func (p *FSProvider) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := p.ensureConfigDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := p.fs.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the configuration to ensure all required fields are set.
func (c *Config) Validate() error {
	switch c.Resolver.Mode {
	case ModeDNS, ModeHostfile:
	default:
		return fmt.Errorf("resolver mode must be %q or %q", ModeDNS, ModeHostfile)
	}
	if c.Resolver.Timeout <= 0 {
		return errors.New("resolver timeout must be positive")
	}
	return nil
}

func (p *FSProvider) ensureConfigDir() error {
	dir := filepath.Dir(p.path)
	if _, err := p.fs.Stat(dir); os.IsNotExist(err) {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return nil
}

func (p *FSProvider) loadAndParse() (*Config, error) {
	f, err := p.fs.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	return cfg, nil
}

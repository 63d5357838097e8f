// Package config describes the application configuration: where
// documents, themes and assets live, which store backend persists
// documents, and how the server and logger behave. Configuration is a
// versioned YAML document merged over built-in defaults, with
// PAGEMASON_* environment variables applied last.
package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreBackendDir  = "dir"
	StoreBackendBolt = "bolt"
)

// Config is the uniform configuration structure. It should unify all
// past, current, and future config versions.
type Config struct {
	// Server fields.
	ServerAddress string

	// Document store fields.
	StoreBackend  string
	StoreRoot     string
	StoreBoltPath string

	// Theme fields.
	ThemesRoot string
	ThemeName  string
	ThemeWatch bool

	// Asset fields.
	AssetsRoot  string
	UploadsRoot string

	// Log related fields.
	LogEnabled bool
	LogVerbose bool
	LogPath    string
}

// ParseYAML parses a versioned YAML document into a Config merged over
// the defaults.
func ParseYAML(data []byte) (*Config, error) {
	version, err := parseVersionFromYAML(data)
	if err != nil {
		return nil, err
	}

	switch version {
	case "v1":
		cfg, err := parseYAMLv1(data)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "failed to validate config")
		}
		return cfg, nil
	default:
		return nil, errors.Errorf("unknown config version: %q", version)
	}
}

// Validate rejects configurations the application cannot start with.
func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return errors.New("server address must not be empty")
	}
	switch c.StoreBackend {
	case StoreBackendDir:
		if c.StoreRoot == "" {
			return errors.New("store root must not be empty for the dir backend")
		}
	case StoreBackendBolt:
		if c.StoreBoltPath == "" {
			return errors.New("store bolt_path must not be empty for the bolt backend")
		}
	default:
		return errors.Errorf("unknown store backend: %q", c.StoreBackend)
	}
	if c.ThemesRoot == "" {
		return errors.New("themes root must not be empty")
	}
	if c.ThemeName == "" {
		return errors.New("theme name must not be empty")
	}
	return nil
}

type versionOnly struct {
	Version string `yaml:"version"`
}

func parseVersionFromYAML(data []byte) (string, error) {
	var result versionOnly
	if err := yaml.Unmarshal(data, &result); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal version")
	}
	return result.Version, nil
}

// configV1 is the YAML wire form of version v1.
type configV1 struct {
	Version string `yaml:"version"`

	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`

	Store struct {
		Backend  string `yaml:"backend"`
		Root     string `yaml:"root"`
		BoltPath string `yaml:"bolt_path"`
	} `yaml:"store"`

	Themes struct {
		Root  string `yaml:"root"`
		Name  string `yaml:"name"`
		Watch bool   `yaml:"watch"`
	} `yaml:"themes"`

	Assets struct {
		Root        string `yaml:"root"`
		UploadsRoot string `yaml:"uploads_root"`
	} `yaml:"assets"`

	Log struct {
		Enabled bool   `yaml:"enabled"`
		Verbose bool   `yaml:"verbose"`
		Path    string `yaml:"path"`
	} `yaml:"log"`
}

func parseYAMLv1(data []byte) (*Config, error) {
	var wire configV1
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg := Default()

	setIfNotEmpty(&cfg.ServerAddress, wire.Server.Address)
	setIfNotEmpty(&cfg.StoreBackend, wire.Store.Backend)
	setIfNotEmpty(&cfg.StoreRoot, wire.Store.Root)
	setIfNotEmpty(&cfg.StoreBoltPath, wire.Store.BoltPath)
	setIfNotEmpty(&cfg.ThemesRoot, wire.Themes.Root)
	setIfNotEmpty(&cfg.ThemeName, wire.Themes.Name)
	setIfNotEmpty(&cfg.AssetsRoot, wire.Assets.Root)
	setIfNotEmpty(&cfg.UploadsRoot, wire.Assets.UploadsRoot)
	setIfNotEmpty(&cfg.LogPath, wire.Log.Path)
	cfg.ThemeWatch = wire.Themes.Watch
	cfg.LogEnabled = wire.Log.Enabled
	cfg.LogVerbose = wire.Log.Verbose

	return cfg, nil
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

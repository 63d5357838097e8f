package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultConfigFile is looked up in the working directory when no
// --config flag is given.
const DefaultConfigFile = "pagemason.yaml"

const envPrefix = "PAGEMASON_"

// Load reads the configuration file and applies environment
// overrides. An empty file path falls back to DefaultConfigFile; a
// missing default file is not an error and yields the defaults.
func Load(file string) (*Config, error) {
	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile
	}

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		cfg, err := ParseYAML(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %q", file)
		}
		return applyEnv(cfg, os.LookupEnv)
	case os.IsNotExist(err) && !explicit:
		return applyEnv(Default(), os.LookupEnv)
	default:
		return nil, errors.Wrapf(err, "failed to read config file %q", file)
	}
}

// applyEnv overlays PAGEMASON_* variables onto cfg. Variables map to
// fields by section and key, e.g. PAGEMASON_SERVER_ADDRESS or
// PAGEMASON_THEMES_NAME.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) (*Config, error) {
	strVars := map[string]*string{
		"SERVER_ADDRESS":  &cfg.ServerAddress,
		"STORE_BACKEND":   &cfg.StoreBackend,
		"STORE_ROOT":      &cfg.StoreRoot,
		"STORE_BOLT_PATH": &cfg.StoreBoltPath,
		"THEMES_ROOT":     &cfg.ThemesRoot,
		"THEMES_NAME":     &cfg.ThemeName,
		"ASSETS_ROOT":     &cfg.AssetsRoot,
		"UPLOADS_ROOT":    &cfg.UploadsRoot,
		"LOG_PATH":        &cfg.LogPath,
	}
	for key, dst := range strVars {
		if value, ok := lookup(envPrefix + key); ok {
			*dst = value
		}
	}

	boolVars := map[string]*bool{
		"THEMES_WATCH": &cfg.ThemeWatch,
		"LOG_ENABLED":  &cfg.LogEnabled,
		"LOG_VERBOSE":  &cfg.LogVerbose,
	}
	for key, dst := range boolVars {
		value, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid boolean in %s", envPrefix+key)
		}
		*dst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to validate config")
	}
	return cfg, nil
}

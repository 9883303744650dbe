package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

var errUnsupportedFormat = errors.New("unsupported config format")

// Load reads a YAML, JSON (comments and trailing commas allowed) or TOML file
// chosen by extension. Values in the file override the preset named by its
// profile key, which defaults to Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	format := strings.ToLower(filepath.Ext(path))

	cfg, err := decode(format, data, Default())
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Profile != "" && cfg.Profile != "default" {
		base, err := Profile(cfg.Profile)
		if err != nil {
			return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
		}
		if cfg, err = decode(format, data, base); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func decode(format string, data []byte, base Config) (Config, error) {
	cfg := base
	cfg.BlankTags = append([]string(nil), base.BlankTags...)

	switch format {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	case ".json", ".jsonc", ".hujson":
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JSONC: %w", err)
		}
		if err := json.Unmarshal(standardized, &cfg); err != nil {
			return Config{}, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w %q", errUnsupportedFormat, format)
	}

	return cfg, nil
}

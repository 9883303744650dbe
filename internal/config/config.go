package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

var tagNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// Config holds options for loading and saving documents
type Config struct {
	// Profile names the preset the file's values are applied over
	Profile string `yaml:"profile" json:"profile" toml:"profile"`

	// SuppressDiagnostics discards parser diagnostics on load
	SuppressDiagnostics bool `yaml:"suppress_diagnostics" json:"suppress_diagnostics" toml:"suppress_diagnostics"`

	// WrapMultipleRoots keeps every top-level node of multi-root markup
	WrapMultipleRoots bool `yaml:"wrap_multiple_roots" json:"wrap_multiple_roots" toml:"wrap_multiple_roots"`

	// InjectDoctype parses markup without a doctype as HTML5
	InjectDoctype bool `yaml:"inject_doctype" json:"inject_doctype" toml:"inject_doctype"`

	// Trim strips surrounding whitespace before parsing
	Trim bool `yaml:"trim" json:"trim" toml:"trim"`

	// BlankTags lists tags whose content passes through untouched
	BlankTags []string `yaml:"blank_tags" json:"blank_tags" toml:"blank_tags"`

	// ImpliedStructure keeps the html, head and body elements the parser adds
	ImpliedStructure bool `yaml:"implied_structure" json:"implied_structure" toml:"implied_structure"`

	// MaxOutputSize caps saved files in bytes, 0 = no limit
	MaxOutputSize int `yaml:"max_output_size" json:"max_output_size" toml:"max_output_size"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level" json:"log_level" toml:"log_level"`
}

// Default returns a configuration with the full normalization chain enabled
func Default() Config {
	return Config{
		Profile:             "default",
		SuppressDiagnostics: true,
		WrapMultipleRoots:   true,
		InjectDoctype:       true,
		Trim:                true,
		BlankTags:           []string{"template", "script", "style", "textarea"},
		ImpliedStructure:    false,
		MaxOutputSize:       0,
		LogLevel:            "info",
	}
}

// Profiles lists the preset names Profile accepts
func Profiles() []string {
	return []string{"default", "document", "fragment", "raw"}
}

// Profile returns the preset configuration for name
func Profile(name string) (Config, error) {
	cfg := Default()

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return cfg, nil
	case "document":
		// Whole pages: keep the structure the parser builds and never wrap.
		cfg.Profile = "document"
		cfg.WrapMultipleRoots = false
		cfg.ImpliedStructure = true
		return cfg, nil
	case "fragment":
		cfg.Profile = "fragment"
		cfg.InjectDoctype = false
		return cfg, nil
	case "raw":
		return Config{
			Profile:  "raw",
			LogLevel: cfg.LogLevel,
		}, nil
	default:
		return Config{}, fmt.Errorf("unknown profile %q (want one of %s)", name, strings.Join(Profiles(), ", "))
	}
}

// Validate checks the configuration for values that cannot be applied
func (c Config) Validate() error {
	for _, tag := range c.BlankTags {
		if !tagNameRegex.MatchString(tag) {
			return fmt.Errorf("invalid blank tag %q", tag)
		}
	}

	if c.MaxOutputSize < 0 {
		return fmt.Errorf("max_output_size must not be negative, got %d", c.MaxOutputSize)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel. An empty level means info.
func (c Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

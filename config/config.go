package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/overfs/overfs/internal/util"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultFsName = "overfs"
	DefaultName   = "overfs"
)

// Verbosity levels accepted from the CLI and config files, mapped onto
// internal log levels by [VerbosityToLevel].
const (
	ErrorVerbose = 1
	WarnVerbose  = 2
	InfoVerbose  = 3
	DebugVerbose = 4
	TraceVerbose = 5
)

// VerbosityToLevel converts a 1-5 verbosity value to a log level,
// clamping out-of-range values.
func VerbosityToLevel(v int) util.LogLevel {
	switch {
	case v <= ErrorVerbose:
		return util.ErrorLevel
	case v == WarnVerbose:
		return util.WarnLevel
	case v == InfoVerbose:
		return util.InfoLevel
	case v == DebugVerbose:
		return util.DebugLevel
	default:
		return util.TraceLevel
	}
}

// Config contains runtime configuration values for the virtual
// filesystem and its serving surface.
type Config struct {
	MountOptions MountOptions  // FUSE surface settings
	LogLvl       util.LogLevel // Internal log level (Default info)
	Mounts       []MountEntry  // Declarative local mounts performed at startup
}

// ConfigOverride uses pointer fields to distinguish between unset and
// zero values when loading partial configuration. LogLvl is expressed as
// a 1-5 verbosity value in files and on the CLI. See [Config].
type ConfigOverride struct {
	FsName *string      `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name   *string      `yaml:"name,omitempty" json:"name,omitempty"`
	Debug  *bool        `yaml:"debug,omitempty" json:"debug,omitempty"`
	LogLvl *int         `yaml:"verbosity,omitempty" json:"verbosity,omitempty"`
	Mounts []MountEntry `yaml:"mounts,omitempty" json:"mounts,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl: util.InfoLevel,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.FsName != nil {
		c.MountOptions.FsName = *override.FsName
	}
	if override.Name != nil {
		c.MountOptions.Name = *override.Name
	}
	if override.Debug != nil {
		c.MountOptions.Debug = *override.Debug
	}
	if override.LogLvl != nil {
		c.LogLvl = VerbosityToLevel(*override.LogLvl)
	}
	if len(override.Mounts) > 0 {
		c.Mounts = append(c.Mounts, override.Mounts...)
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}

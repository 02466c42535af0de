// Package config loads the converter's options from file, environment
// and defaults. Configuration is read from oxidoc.toml in the working
// directory or XDG config dir, with OXIDOC_-prefixed environment
// variables taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/oxidoc/oxidoc/internal/emit"
)

// SidebarConfig controls navigation output.
type SidebarConfig struct {
	// Path of the generated sidebars module, relative to the output root
	// unless absolute.
	Path string `mapstructure:"path"`
	// Collapsed is the initial-display hint for category nodes.
	Collapsed bool `mapstructure:"collapsed"`
	// RootLink, when set, adds a back-link entry above the crate title.
	RootLink string `mapstructure:"root_link"`
}

// Config are the converter options shared by every invocation of a run.
type Config struct {
	// OutputRoot is the directory documents are written under.
	OutputRoot string `mapstructure:"output"`
	// BasePath prefixes every generated link ("" means relative links).
	BasePath string `mapstructure:"base_path"`
	// IncludePrivate admits non-public items into the output.
	IncludePrivate bool `mapstructure:"include_private"`
	// Granularity selects single, per-module or per-item output.
	Granularity emit.Granularity `mapstructure:"granularity"`
	// Workspace lists sibling package names that resolve to internal
	// links instead of registry URLs.
	Workspace []string      `mapstructure:"workspace"`
	Sidebar   SidebarConfig `mapstructure:"sidebar"`
}

func InitializeViper() error {
	viper.SetConfigName("oxidoc")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "oxidoc"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "oxidoc"))
	}

	viper.SetDefault("output", "docs/api")
	viper.SetDefault("base_path", "")
	viper.SetDefault("include_private", false)
	viper.SetDefault("granularity", "per-item")
	viper.SetDefault("sidebar.path", "sidebars-rust.js")
	viper.SetDefault("sidebar.collapsed", false)

	viper.SetEnvPrefix("OXIDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// stringToGranularityHookFunc decodes granularity strings ("per-item")
// into the typed constant.
func stringToGranularityHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(emit.Granularity(0)) || f.Kind() != reflect.String {
			return data, nil
		}
		return emit.ParseGranularity(data.(string))
	}
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}
	return decode(viper.AllSettings())
}

func decode(settings map[string]interface{}) (*Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToGranularityHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// SidebarPath resolves the sidebar output location against the output
// root.
func (c *Config) SidebarPath() string {
	if filepath.IsAbs(c.Sidebar.Path) {
		return c.Sidebar.Path
	}
	return filepath.Join(c.OutputRoot, c.Sidebar.Path)
}

// Package config loads the application configuration and the named
// layout profiles conversions can start from.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the application-level configuration, read from
// .docxmd.yaml in the working directory or the home directory. All
// fields have working defaults.
type Config struct {
	// MediaDir is where extracted images are written, relative to the
	// markdown output.
	MediaDir string `mapstructure:"media_dir"`

	// ProfileFile is the TOML file the named layout profiles live in.
	ProfileFile string `mapstructure:"profile_file"`

	// Profile is the profile applied when the command line names none.
	Profile string `mapstructure:"profile"`

	// HistoryFile is where conversion records accumulate.
	HistoryFile string `mapstructure:"history_file"`

	Debug bool `mapstructure:"debug"`
}

// Load reads the configuration. An explicit path must exist; without
// one the default locations are searched and a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.SetConfigName(".docxmd")
		v.SetConfigType("yaml")
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("media_dir", "media")
	v.SetDefault("history_file", defaultHistoryPath())
	v.SetDefault("debug", false)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docxmd-history.json"
	}
	return home + "/.docxmd-history.json"
}

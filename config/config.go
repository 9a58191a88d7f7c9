package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/TomKeddie/luna/log"
)

// Config is the tool configuration. Every field can be overridden by an
// environment variable named after its key with the LUNA_ prefix.
type Config struct {
	Platform   string `mapstructure:"platform"`
	OutputDir  string `mapstructure:"output_dir"`
	Programmer string `mapstructure:"programmer"`
	Cable      string `mapstructure:"cable"`
	Vivado     string `mapstructure:"vivado"`
}

const configFileName = "config"

var config *Config

// Dir returns the directory holding the configuration file.
func Dir() (string, error) {
	if dir, ok := os.LookupEnv("LUNA_CONFIG_DIR"); ok && dir != "" {
		return dir, nil
	}
	if xdgConfigHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "luna"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "unable to locate the configuration directory")
	}
	return filepath.Join(home, ".config", "luna"), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("platform", "")
	v.SetDefault("output_dir", "build")
	v.SetDefault("programmer", "")
	v.SetDefault("cable", "")
	v.SetDefault("vivado", "vivado")
	v.SetEnvPrefix("luna")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file, if any, and applies environment overrides.
func Load() (Config, error) {
	v := newViper()
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")

	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	} else {
		log.Debug("%s. Using default configuration\n", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, errors.Wrap(err, "reading configuration file")
		}
		log.Debug("No configuration file found. Using default configuration\n")
	} else {
		log.Debug("Loaded configuration from `%s`\n", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	log.Debug("Running with configuration: %+v\n", c)
	return c, nil
}

// GetConfig returns the configuration, loading it on first use. A broken
// configuration file is reported and the defaults are used instead.
func GetConfig() Config {
	if config == nil {
		loaded, err := Load()
		if err != nil {
			log.Warning("%s. Using default configuration\n", err)
			loaded, _ = defaults()
		}
		config = &loaded
	}
	return *config
}

func defaults() (Config, error) {
	var c Config
	err := newViper().Unmarshal(&c)
	return c, err
}

// Package config provides Viper-based configuration management for ixurl
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/profile"
)

// EnvPrefix prefixes every environment override, e.g. IXURL_SIGN_KEY.
const EnvPrefix = "IXURL"

// Config represents the complete ixurl configuration
type Config struct {
	Domains             []string      `mapstructure:"domains"`
	SignKey             string        `mapstructure:"sign_key"`
	UseHTTPS            bool          `mapstructure:"use_https"`
	IncludeLibraryParam bool          `mapstructure:"include_library_param"`
	Shard               string        `mapstructure:"shard"`
	Build               BuildConfig   `mapstructure:"build"`
	Logging             LoggingConfig `mapstructure:"logging"`
	Output              OutputConfig  `mapstructure:"output"`
}

// BuildConfig contains defaults for the build command
type BuildConfig struct {
	Profile          string   `mapstructure:"profile"`
	Workers          int      `mapstructure:"workers"`
	PathPrefix       string   `mapstructure:"path_prefix"`
	Formats          []string `mapstructure:"formats"`
	PlaceholderWidth int      `mapstructure:"placeholder_width"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// flagKeys maps CLI flag names to config keys they override.
var flagKeys = map[string]string{
	"domain":   "domains",
	"sign-key": "sign_key",
	"shard":    "shard",
}

// Load reads configuration from file, environment variables and the
// flags in fs that are named in flagKeys. fs may be nil.
func Load(cfgFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set config file if specified
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Search paths for ixurl.toml
		v.SetConfigName("ixurl")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ixurl")
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("domains", []string{})
	v.SetDefault("sign_key", "")
	v.SetDefault("use_https", true)
	v.SetDefault("include_library_param", true)
	v.SetDefault("shard", ixurl.ShardCRC.String())

	// Build defaults
	v.SetDefault("build.profile", profile.DefaultName)
	v.SetDefault("build.workers", 0)
	v.SetDefault("build.path_prefix", "")
	v.SetDefault("build.formats", []string{})
	v.SetDefault("build.placeholder_width", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// Output defaults
	v.SetDefault("output.colors", true)
}

func validate(cfg *Config) error {
	if _, err := ixurl.ParseShardStrategy(cfg.Shard); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Build.Workers < 0 {
		return fmt.Errorf("build.workers must not be negative, got %d", cfg.Build.Workers)
	}
	return nil
}

// LogLevel returns the configured level, info when unset.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// BuilderOptions translates the configuration into builder options.
func (c *Config) BuilderOptions(log zerolog.Logger) ([]ixurl.Option, error) {
	shard, err := ixurl.ParseShardStrategy(c.Shard)
	if err != nil {
		return nil, err
	}
	return []ixurl.Option{
		ixurl.WithHTTPS(c.UseHTTPS),
		ixurl.WithSignKey(c.SignKey),
		ixurl.WithLibraryParam(c.IncludeLibraryParam),
		ixurl.WithShardStrategy(shard),
		ixurl.WithLogger(log),
	}, nil
}

// NewBuilder returns a builder for the configured domains.
func (c *Config) NewBuilder(log zerolog.Logger) (*ixurl.Builder, error) {
	opts, err := c.BuilderOptions(log)
	if err != nil {
		return nil, err
	}
	return ixurl.New(c.Domains, opts...)
}

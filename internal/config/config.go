package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	MinElderAge = 1
	MaxElderAge = 130
)

type Config struct {
	DataFile   string `mapstructure:"TRIAGE_DATA_FILE"`
	ElderAge   int    `mapstructure:"TRIAGE_ELDER_AGE"`
	Env        string `mapstructure:"ENV"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	ClinicName string `mapstructure:"CLINIC_NAME"`
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"data-file": "TRIAGE_DATA_FILE",
	"elder-age": "TRIAGE_ELDER_AGE",
	"log-level": "LOG_LEVEL",
}

// Load reads configuration from defaults, an optional .env file, the
// environment and, when flags is non-nil, any flag the user set explicitly.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("TRIAGE_DATA_FILE", "triage.json")
	v.SetDefault("TRIAGE_ELDER_AGE", 65)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CLINIC_NAME", "Santa Maria Clinic")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("TRIAGE_DATA_FILE")
	v.BindEnv("TRIAGE_ELDER_AGE")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("CLINIC_NAME")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DataFile = strings.TrimSpace(cfg.DataFile)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Level returns the parsed log level. Validate guarantees it parses.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate checks that the configuration is usable before any patient data
// is touched.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("TRIAGE_DATA_FILE must not be empty")
	}
	if c.ElderAge < MinElderAge || c.ElderAge > MaxElderAge {
		return fmt.Errorf("TRIAGE_ELDER_AGE must be between %d and %d, got %d", MinElderAge, MaxElderAge, c.ElderAge)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL is not a valid level: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the bank manager
type Config struct {
	// Account store
	Bank BankConfig `mapstructure:"bank"`

	// Terminal output
	UI UIConfig `mapstructure:"ui"`

	// Diagnostic logging
	Log LogConfig `mapstructure:"log"`

	Verbose bool `mapstructure:"verbose"`
}

// BankConfig holds account store settings
type BankConfig struct {
	// Capacity of the store
	MaxAccounts int `mapstructure:"max_accounts"`

	// Inclusive range account numbers are drawn from
	IDMin int `mapstructure:"id_min"`
	IDMax int `mapstructure:"id_max"`

	// Random draws before falling back to a linear probe
	IDDrawAttempts int `mapstructure:"id_draw_attempts"`

	// Random seed for reproducible account numbers (0 = random)
	Seed int64 `mapstructure:"seed"`
}

// UIConfig holds terminal output settings
type UIConfig struct {
	NoColor bool `mapstructure:"no_color"`
}

// LogConfig holds logger settings
type LogConfig struct {
	// debug, info, warn, error
	Level string `mapstructure:"level"`

	// JSON log file; empty keeps logs off the interactive screen
	File string `mapstructure:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bank: BankConfig{
			MaxAccounts:    MaxAccounts,
			IDMin:          AccountIDMin,
			IDMax:          AccountIDMax,
			IDDrawAttempts: IDDrawAttempts,
			Seed:           0,
		},
		UI: UIConfig{
			NoColor: false,
		},
		Log: LogConfig{
			Level: LogLevel,
			File:  "",
		},
		Verbose: false,
	}
}

// Init prepares a viper instance: environment overrides and an optional
// config file. Missing configFile is not an error when empty.
func Init(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about
	d := DefaultConfig()
	v.SetDefault("bank.max_accounts", d.Bank.MaxAccounts)
	v.SetDefault("bank.id_min", d.Bank.IDMin)
	v.SetDefault("bank.id_max", d.Bank.IDMax)
	v.SetDefault("bank.id_draw_attempts", d.Bank.IDDrawAttempts)
	v.SetDefault("bank.seed", d.Bank.Seed)
	v.SetDefault("ui.no_color", d.UI.NoColor)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("verbose", d.Verbose)

	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	return nil
}

// Load reads configuration from viper into a Config struct
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// Unmarshal viper config into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []string

	if c.Bank.MaxAccounts <= 0 {
		errs = append(errs, "bank.max_accounts must be positive")
	}
	if c.Bank.IDMin <= 0 {
		errs = append(errs, "bank.id_min must be positive")
	}
	if c.Bank.IDMax < c.Bank.IDMin {
		errs = append(errs, "bank.id_max must be >= bank.id_min")
	} else if span := c.Bank.IDMax - c.Bank.IDMin + 1; c.Bank.MaxAccounts > span {
		errs = append(errs, fmt.Sprintf("bank.max_accounts (%d) exceeds the account number range (%d ids)", c.Bank.MaxAccounts, span))
	}
	if c.Bank.IDDrawAttempts < 0 {
		errs = append(errs, "bank.id_draw_attempts must be non-negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", joinErrors(errs))
	}

	return nil
}

// joinErrors joins error messages with newline and bullet points
func joinErrors(errs []string) string {
	return strings.Join(errs, "\n  - ")
}

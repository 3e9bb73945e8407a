package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvConfigPath names the env var that overrides the config file location.
const EnvConfigPath = "JASKCALC_CONFIG"

// Config holds application configuration.
type Config struct {
	UI   UIConfig
	Tape TapeConfig
	Log  LogConfig
	Keys []KeyBinding
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Locale is the BCP 47 tag whose digit grouping is used on the display.
	Locale   string
	ShowTape bool `mapstructure:"show_tape"`
}

// TapeConfig holds session tape settings.
type TapeConfig struct {
	Limit int
}

// LogConfig holds debug logging settings.
type LogConfig struct {
	File string
}

// KeyBinding overrides the keys of one action in one key scope, e.g.
//
//	[[keys]]
//	scope = "calculator"
//	action = "compute"
//	keys = ["enter", "="]
type KeyBinding struct {
	Scope  string
	Action string
	Keys   []string
}

// Path returns the config file location: the explicit override if set, then
// JASKCALC_CONFIG, then $HOME/.config/jaskcalc/config.toml.
func Path(override string) string {
	if override != "" {
		return override
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "jaskcalc", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix JASKCALC_.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.show_tape", true)
	v.SetDefault("tape.limit", 10)
	v.SetDefault("log.file", "")

	v.SetConfigType("toml")
	v.SetConfigFile(Path(path))

	v.SetEnvPrefix("JASKCALC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Tape.Limit < 0 {
		c.Tape.Limit = 0
	}
	return c, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Save writes the provided config to path (see Path), creating the config
// directory if needed.
func Save(path string, cfg Config) error {
	path = Path(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("ui.locale", cfg.UI.Locale)
	v.Set("ui.show_tape", cfg.UI.ShowTape)
	v.Set("tape.limit", cfg.Tape.Limit)
	v.Set("log.file", cfg.Log.File)
	if len(cfg.Keys) > 0 {
		keys := make([]map[string]any, 0, len(cfg.Keys))
		for _, k := range cfg.Keys {
			keys = append(keys, map[string]any{"scope": k.Scope, "action": k.Action, "keys": k.Keys})
		}
		v.Set("keys", keys)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

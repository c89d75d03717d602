// Package config loads pagestack host settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/constants"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/storage"
)

// Config holds host configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" toml:"log"`
	Session SessionConfig `mapstructure:"session" toml:"session"`
	Input   InputConfig   `mapstructure:"input" toml:"input"`
	Locale  LocaleConfig  `mapstructure:"locale" toml:"locale"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level         string `mapstructure:"level" toml:"level"`
	InternalLevel string `mapstructure:"internal_level" toml:"internal_level"`
	Path          string `mapstructure:"path" toml:"path"`
}

// SessionConfig selects where suspended sessions are kept.
type SessionConfig struct {
	Backend string `mapstructure:"backend" toml:"backend"`
	Path    string `mapstructure:"path" toml:"path"`
	HostID  string `mapstructure:"host_id" toml:"host_id"`
}

// InputConfig holds back signal bindings.
type InputConfig struct {
	BackButton      string   `mapstructure:"back_button" toml:"back_button"`
	BackKeys        []string `mapstructure:"back_keys" toml:"back_keys"`
	FlipFaceButtons bool     `mapstructure:"flip_face_buttons" toml:"flip_face_buttons"`
	Evdev           bool     `mapstructure:"evdev" toml:"evdev"`
	EvdevDevice     string   `mapstructure:"evdev_device" toml:"evdev_device"`
	EvdevCodes      []string `mapstructure:"evdev_codes" toml:"evdev_codes"`
}

// LocaleConfig holds the language used for user-facing messages.
type LocaleConfig struct {
	Language string `mapstructure:"language" toml:"language"`
}

// DefaultPath is the config file used when PAGESTACK_CONFIG is unset.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "pagestack", "config.toml")
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "pagestack")
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:         "info",
			InternalLevel: "error",
		},
		Session: SessionConfig{
			Backend: constants.DefaultSessionBackend,
			Path:    filepath.Join(dataDir(), "sessions"),
		},
		Input: InputConfig{
			BackButton:      constants.DefaultBackButton.GetName(),
			BackKeys:        []string{"Escape", "AC Back"},
			FlipFaceButtons: os.Getenv(constants.FlipFaceEnvVar) != "",
			EvdevDevice:     constants.DefaultEvdevDevice,
			EvdevCodes:      []string{"KEY_BACK", "KEY_ESC", "BTN_EAST"},
		},
		Locale: LocaleConfig{Language: "en"},
	}
}

// Load reads configuration from file and env. Env var overrides use prefix
// PAGESTACK_ (e.g., PAGESTACK_SESSION_BACKEND). An explicit path wins over
// PAGESTACK_CONFIG, which wins over DefaultPath. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.internal_level", d.Log.InternalLevel)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.path", d.Session.Path)
	v.SetDefault("session.host_id", d.Session.HostID)
	v.SetDefault("input.back_button", d.Input.BackButton)
	v.SetDefault("input.back_keys", d.Input.BackKeys)
	v.SetDefault("input.flip_face_buttons", d.Input.FlipFaceButtons)
	v.SetDefault("input.evdev", d.Input.Evdev)
	v.SetDefault("input.evdev_device", d.Input.EvdevDevice)
	v.SetDefault("input.evdev_codes", d.Input.EvdevCodes)
	v.SetDefault("locale.language", d.Locale.Language)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv(constants.ConfigEnvVar)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PAGESTACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	switch strings.ToLower(c.Session.Backend) {
	case storage.BackendMemory, storage.BackendFile, storage.BackendSQLite:
	default:
		return fmt.Errorf("session.backend: unknown backend %q", c.Session.Backend)
	}
	if strings.ToLower(c.Session.Backend) != storage.BackendMemory && c.Session.Path == "" {
		return fmt.Errorf("session.path: required for the %s backend", c.Session.Backend)
	}
	if _, ok := constants.ParseVirtualButton(c.Input.BackButton); !ok {
		return fmt.Errorf("input.back_button: unknown button %q", c.Input.BackButton)
	}
	return nil
}

// Save writes cfg as TOML, creating the config directory if needed. An empty
// path selects PAGESTACK_CONFIG, then DefaultPath.
func Save(cfg Config, path string) error {
	if path == "" {
		path = os.Getenv(constants.ConfigEnvVar)
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

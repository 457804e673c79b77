package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dserrors "github.com/systmms/davsync/internal/errors"
	"github.com/systmms/davsync/internal/logging"
	"gopkg.in/yaml.v3"
)

// Keys in the general section consumed by the credential layer
const (
	KeyPasswordEval        = "passwordeval"
	KeyPasswordEvalTimeout = "passwordeval_timeout"
	KeyKeyringBackend      = "keyring_backend"
	KeyKeyringDir          = "keyring_dir"
)

// EnvConfigPath overrides the default config location
const EnvConfigPath = "DAVSYNC_CONFIG"

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
	Settings       *Triple
}

// Definition represents the raw config.yaml structure before coercion
type Definition struct {
	General  map[string]string            `yaml:"general"`
	Pairs    map[string]map[string]string `yaml:"pairs,omitempty"`
	Storages map[string]map[string]string `yaml:"storages,omitempty"`
}

// Section is a coerced settings block. Values are bool, int64, float64 or string.
type Section map[string]interface{}

// Triple is the coerced (general, per-pair, per-storage) settings.
type Triple struct {
	General  Section
	Pairs    map[string]Section
	Storages map[string]Section
}

// DefaultPath returns $DAVSYNC_CONFIG or ~/.config/davsync/config.yaml
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "davsync", "config.yaml")
}

// Load reads, validates and coerces the config file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: fmt.Sprintf("Create %s or point --config / %s at an existing file", c.Path, EnvConfigPath),
				Err:        err,
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	return c.LoadBytes(data)
}

// LoadBytes validates and coerces an in-memory config document
func (c *Config) LoadBytes(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
			Err:        err,
		}
	}

	if err := validateDocument(doc); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return dserrors.ConfigError{
			Message:    "configuration does not match the expected layout",
			Suggestion: "Every setting must be a plain value under general, pairs.<name> or storages.<name>",
			Err:        err,
		}
	}

	triple, err := def.Coerce()
	if err != nil {
		return err
	}

	c.Definition = &def
	c.Settings = triple
	if c.Logger != nil {
		c.Logger.Debug("Loaded configuration from %s (%d pairs, %d storages)", c.Path, len(triple.Pairs), len(triple.Storages))
	}
	return nil
}

// Coerce applies ParseOptions to every section of the definition
func (d *Definition) Coerce() (*Triple, error) {
	general, err := coerceSection("general", d.General)
	if err != nil {
		return nil, err
	}

	pairs, err := coerceSections("pairs", d.Pairs)
	if err != nil {
		return nil, err
	}

	storages, err := coerceSections("storages", d.Storages)
	if err != nil {
		return nil, err
	}

	return &Triple{General: general, Pairs: pairs, Storages: storages}, nil
}

func coerceSections(kind string, raw map[string]map[string]string) (map[string]Section, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]Section, len(raw))
	for _, name := range names {
		s, err := coerceSection(kind+"."+name, raw[name])
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

func coerceSection(prefix string, raw map[string]string) (Section, error) {
	values, err := ParseOptions(OptionsFromMap(raw))
	if err != nil {
		if cfgErr, ok := err.(dserrors.ConfigError); ok {
			cfgErr.Field = prefix + "." + cfgErr.Field
			return nil, cfgErr
		}
		return nil, err
	}
	return Section(values), nil
}

// General returns the coerced general settings, never nil
func (c *Config) General() Section {
	if c.Settings == nil || c.Settings.General == nil {
		return Section{}
	}
	return c.Settings.General
}

// GetStorage returns the coerced settings of a named storage
func (c *Config) GetStorage(name string) (Section, error) {
	if c.Settings == nil {
		return nil, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	if s, ok := c.Settings.Storages[name]; ok {
		return s, nil
	}

	var available []string
	for n := range c.Settings.Storages {
		available = append(available, n)
	}
	sort.Strings(available)

	suggestion := "Add the storage to the 'storages:' section of your config"
	if len(available) > 0 {
		suggestion = fmt.Sprintf("Available storages: %s", strings.Join(available, ", "))
	}

	return nil, dserrors.ConfigError{
		Field:      "storage",
		Value:      name,
		Message:    "storage not found",
		Suggestion: suggestion,
	}
}

// String returns the value of key if it is set and is a string.
// A present value of another type is a ConfigError.
func (s Section) String(key string) (string, bool, error) {
	v, ok := s[key]
	if !ok {
		return "", false, nil
	}
	str, isStr := v.(string)
	if !isStr {
		return "", true, dserrors.ConfigError{
			Field:      key,
			Value:      v,
			Message:    fmt.Sprintf("expected a string, got %T", v),
			Suggestion: `Wrap the value in double quotes to keep it as text`,
		}
	}
	return str, true, nil
}

// Int returns the integer value of key, or def when unset.
func (s Section) Int(key string, def int64) (int64, error) {
	v, ok := s[key]
	if !ok {
		return def, nil
	}
	i, isInt := v.(int64)
	if !isInt {
		return 0, dserrors.ConfigError{
			Field:   key,
			Value:   v,
			Message: fmt.Sprintf("expected an integer, got %T", v),
		}
	}
	return i, nil
}

// Bool returns the boolean value of key, or def when unset.
func (s Section) Bool(key string, def bool) (bool, error) {
	v, ok := s[key]
	if !ok {
		return def, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, dserrors.ConfigError{
			Field:      key,
			Value:      v,
			Message:    fmt.Sprintf("expected a boolean, got %T", v),
			Suggestion: "Use one of true/false, yes/no, on/off",
		}
	}
	return b, nil
}

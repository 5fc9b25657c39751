// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/sandy-sp/ollama-scout/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Settings holds every user-tunable value. Profiles override a subset.
type Settings struct {
	DefaultUseCase       string `toml:"default_use_case" json:"default_use_case"`
	DefaultTopN          int    `toml:"default_top_n" json:"default_top_n"`
	AutoExport           bool   `toml:"auto_export" json:"auto_export"`
	ExportDir            string `toml:"export_dir" json:"export_dir"`
	OfflineMode          bool   `toml:"offline_mode" json:"offline_mode"`
	ShowBenchmark        bool   `toml:"show_benchmark" json:"show_benchmark"`
	OllamaHost           string `toml:"ollama_host" json:"ollama_host"`
	CatalogURL           string `toml:"catalog_url" json:"catalog_url"`
	CatalogLimit         int    `toml:"catalog_limit" json:"catalog_limit"`
	CacheTTLHours        int    `toml:"cache_ttl_hours" json:"cache_ttl_hours"`
	BenchmarkTimeoutSecs int    `toml:"benchmark_timeout_secs" json:"benchmark_timeout_secs"`
	LogLevel             string `toml:"log_level" json:"log_level"`
}

// Config is the on-disk configuration: base settings plus named profiles.
type Config struct {
	Settings

	// ActiveProfile names the profile applied when none is requested.
	ActiveProfile string `toml:"active_profile" json:"active_profile"`

	// Profiles maps a profile name to partial setting overrides.
	Profiles map[string]map[string]any `toml:"profiles,omitempty" json:"profiles,omitempty"`
}

// DefaultProfile is the implicit profile with no overrides.
const DefaultProfile = "default"

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		DefaultUseCase:       "all",
		DefaultTopN:          15,
		AutoExport:           false,
		ExportDir:            "",
		OfflineMode:          false,
		ShowBenchmark:        false,
		OllamaHost:           "http://127.0.0.1:11434",
		CatalogURL:           "https://ollama.com/api/tags",
		CatalogLimit:         100,
		CacheTTLHours:        24,
		BenchmarkTimeoutSecs: 60,
		LogLevel:             "warn",
	}
}

// Default returns a Config with default values and no profiles.
func Default() *Config {
	return &Config{
		Settings:      DefaultSettings(),
		ActiveProfile: DefaultProfile,
		Profiles:      map[string]map[string]any{},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the ollama-scout state directory. OLLAMA_SCOUT_HOME overrides
// the default ~/.ollama-scout.
func Dir() (string, error) {
	if dir := os.Getenv("OLLAMA_SCOUT_HOME"); dir != "" {
		return util.ExpandHome(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ollama-scout"), nil
}

func inDir(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Path returns the config file path.
func Path() (string, error) { return inDir("config.toml") }

// DBPath returns the SQLite state database path.
func DBPath() (string, error) { return inDir("scout.db") }

// OverlayPath returns the custom models file path.
func OverlayPath() (string, error) { return inDir("models.yaml") }

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file, creating it with defaults on first run.
// An unreadable file yields defaults together with the error so callers
// can warn and continue.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load for an explicit path.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := SaveTOML(cfg, path); err != nil {
			return cfg, fmt.Errorf("failed to create config file: %w", err)
		}
		return cfg, nil
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return Default(), fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, ErrActiveProfileMissing) {
			// Keep the file's settings and profiles so the reference can be
			// repaired and saved.
			cfg.ActiveProfile = DefaultProfile
			return cfg, fmt.Errorf("invalid config: %w", err)
		}
		return Default(), fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := DefaultSettings()

	if cfg.DefaultUseCase == "" {
		cfg.DefaultUseCase = defaults.DefaultUseCase
	}
	if cfg.DefaultTopN == 0 {
		cfg.DefaultTopN = defaults.DefaultTopN
	}
	if cfg.OllamaHost == "" {
		cfg.OllamaHost = defaults.OllamaHost
	}
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = defaults.CatalogURL
	}
	if cfg.CatalogLimit == 0 {
		cfg.CatalogLimit = defaults.CatalogLimit
	}
	if cfg.CacheTTLHours == 0 {
		cfg.CacheTTLHours = defaults.CacheTTLHours
	}
	if cfg.BenchmarkTimeoutSecs == 0 {
		cfg.BenchmarkTimeoutSecs = defaults.BenchmarkTimeoutSecs
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.ActiveProfile == "" {
		cfg.ActiveProfile = DefaultProfile
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]map[string]any{}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# ollama-scout configuration file\n")
	buf.WriteString("# Edit directly or use `ollama-scout config set KEY VALUE`\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validUseCases = []string{"all", "coding", "reasoning", "chat"}

// Validate checks the settings and returns ValidateErrors on failure.
func (s Settings) Validate() error {
	var errs ValidateErrors

	if !contains(validUseCases, s.DefaultUseCase) {
		errs = append(errs, ValidationError{"default_use_case", "must be one of " + strings.Join(validUseCases, ", ")})
	}
	if s.DefaultTopN < 1 {
		errs = append(errs, ValidationError{"default_top_n", "must be at least 1"})
	}
	if s.CatalogLimit < 1 {
		errs = append(errs, ValidationError{"catalog_limit", "must be at least 1"})
	}
	if s.CacheTTLHours < 1 {
		errs = append(errs, ValidationError{"cache_ttl_hours", "must be at least 1"})
	}
	if s.BenchmarkTimeoutSecs < 5 || s.BenchmarkTimeoutSecs > 600 {
		errs = append(errs, ValidationError{"benchmark_timeout_secs", "must be between 5 and 600"})
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil || s.LogLevel == "" {
		errs = append(errs, ValidationError{"log_level", "must be a log level (trace, debug, info, warn, error, fatal, panic, disabled)"})
	}
	if !strings.HasPrefix(s.CatalogURL, "http://") && !strings.HasPrefix(s.CatalogURL, "https://") {
		errs = append(errs, ValidationError{"catalog_url", "must be an http or https URL"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the base settings, every profile's overrides and then
// the active profile. A dangling active profile is reported last, as
// ErrActiveProfileMissing, so it only surfaces when nothing else is wrong.
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	for name := range c.Profiles {
		if _, err := c.Effective(name); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
	}
	if c.ActiveProfile != DefaultProfile {
		if _, ok := c.Profiles[c.ActiveProfile]; !ok {
			return fmt.Errorf("%w: %q", ErrActiveProfileMissing, c.ActiveProfile)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - OLLAMA_SCOUT_USE_CASE: default_use_case
//   - OLLAMA_SCOUT_TOP_N: default_top_n
//   - OLLAMA_SCOUT_OFFLINE: offline_mode
//   - OLLAMA_HOST: ollama_host
//   - OLLAMA_SCOUT_LOG_LEVEL: log_level
//
// Values that fail to parse are ignored.
func (s *Settings) ApplyEnvOverrides() {
	if uc := os.Getenv("OLLAMA_SCOUT_USE_CASE"); uc != "" && contains(validUseCases, strings.ToLower(uc)) {
		s.DefaultUseCase = strings.ToLower(uc)
	}
	if n, err := strconv.Atoi(os.Getenv("OLLAMA_SCOUT_TOP_N")); err == nil && n >= 1 {
		s.DefaultTopN = n
	}
	if offline := os.Getenv("OLLAMA_SCOUT_OFFLINE"); offline != "" {
		s.OfflineMode = parseBool(offline)
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		s.OllamaHost = host
	}
	if lvl := os.Getenv("OLLAMA_SCOUT_LOG_LEVEL"); lvl != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(lvl)); err == nil {
			s.LogLevel = strings.ToLower(lvl)
		}
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes"
}

// =============================================================================
// GET/SET HELPERS
// =============================================================================

// ErrUnknownKey is returned for keys that are not settings.
var ErrUnknownKey = errors.New("unknown config key")

// Keys returns every settings key in declaration order.
func Keys() []string {
	t := reflect.TypeOf(Settings{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		keys = append(keys, tomlKey(t.Field(i)))
	}
	return keys
}

// IsKey reports whether key names a setting.
func IsKey(key string) bool {
	return contains(Keys(), key)
}

func tomlKey(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	return name
}

func (s *Settings) field(key string) (reflect.Value, error) {
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlKey(t.Field(i)) == key {
			return v.Field(i), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Get retrieves a setting by key.
func (s *Settings) Get(key string) (any, error) {
	f, err := s.field(key)
	if err != nil {
		return nil, err
	}
	return f.Interface(), nil
}

// Set assigns a setting from its string form without validating.
func (s *Settings) Set(key, value string) error {
	f, err := s.field(key)
	if err != nil {
		return err
	}
	return setFieldValue(f, value)
}

// Set assigns a base setting from its string form, rejecting values that
// fail validation.
func (c *Config) Set(key, value string) error {
	next := c.Settings
	if err := next.Set(key, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	c.Settings = next
	return nil
}

// setFieldValue converts a string to the field's kind and assigns it.
func setFieldValue(field reflect.Value, value string) error {
	value = strings.TrimSpace(value)
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value %q", value)
		}
		field.SetInt(n)
	case reflect.Bool:
		field.SetBool(parseBool(value))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// Map returns the settings keyed by name, for display.
func (s Settings) Map() map[string]any {
	out := make(map[string]any)
	for _, k := range Keys() {
		v, _ := s.Get(k)
		out[k] = v
	}
	return out
}

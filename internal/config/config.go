// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for floodqa.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.floodqa/config.toml
//   - ~/.floodqa/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// DURATION
// =============================================================================

// Duration is a time.Duration written as a Go duration string ("60s") in both
// TOML and JSON.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete floodqa configuration.
type Config struct {
	// DataDir holds the prefs database and the log file (default ~/.floodqa)
	DataDir string `toml:"data_dir" json:"data_dir"`

	Query QueryConfig `toml:"query" json:"query"`
	Map   MapConfig   `toml:"map" json:"map"`
	UI    UIConfig    `toml:"ui" json:"ui"`
	Log   LogConfig   `toml:"log" json:"log"`
}

// QueryConfig configures the remote question answering service.
type QueryConfig struct {
	// Endpoint is the full URL of the query endpoint
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// Timeout bounds a single question
	Timeout Duration `toml:"timeout" json:"timeout"`
	// RatePerSecond throttles submissions; 0 disables throttling
	RatePerSecond float64 `toml:"rate_per_second" json:"rate_per_second"`
}

// MapConfig configures the map panel camera.
type MapConfig struct {
	CenterLng   float64  `toml:"center_lng" json:"center_lng"`
	CenterLat   float64  `toml:"center_lat" json:"center_lat"`
	Zoom        float64  `toml:"zoom" json:"zoom"`
	FlyZoom     float64  `toml:"fly_zoom" json:"fly_zoom"`
	FlyDuration Duration `toml:"fly_duration" json:"fly_duration"`
}

// UIConfig contains interface settings.
type UIConfig struct {
	// HistorySize is the number of questions kept for recall
	HistorySize int `toml:"history_size" json:"history_size"`
	// JumpThreshold is the distance from the bottom, in lines, beyond which
	// the jump-to-latest button shows
	JumpThreshold int `toml:"jump_threshold" json:"jump_threshold"`
	// LineRevealDelay staggers the lines of multi-line answers
	LineRevealDelay Duration `toml:"line_reveal_delay" json:"line_reveal_delay"`
	// Markdown renders answers through glamour
	Markdown bool `toml:"markdown" json:"markdown"`
	// Suggestions are the quick question chips
	Suggestions []string `toml:"suggestions" json:"suggestions"`
	// Mouse enables mouse support (map clicks, wheel scrolling)
	Mouse bool `toml:"mouse" json:"mouse"`
}

// LogConfig configures the diagnostic log.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// File is the log destination (default <data_dir>/floodqa.log)
	File string `toml:"file" json:"file"`
}

// DefaultSuggestions are the quick questions shown on an empty input.
var DefaultSuggestions = []string{
	"附近哪里有避难场所？",
	"洪水来临时应该如何撤离？",
	"被困时如何发出求救信号？",
	"镇江市防汛应急预案的响应等级有哪些？",
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Query: QueryConfig{
			Endpoint:      "http://127.0.0.1:5000/query",
			Timeout:       Duration(60 * time.Second),
			RatePerSecond: 2,
		},
		Map: MapConfig{
			CenterLng:   119.42,
			CenterLat:   31.96,
			Zoom:        10,
			FlyZoom:     13,
			FlyDuration: Duration(2 * time.Second),
		},
		UI: UIConfig{
			HistorySize:     50,
			JumpThreshold:   100,
			LineRevealDelay: Duration(100 * time.Millisecond),
			Markdown:        false,
			Suggestions:     append([]string(nil), DefaultSuggestions...),
			Mouse:           true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.floodqa.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".floodqa"), nil
}

// ConfigPathTOML returns the TOML config path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the config file Load would read: the TOML file if it
// exists, else the JSON file if it exists, else the TOML path.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return tomlPath, nil
}

// PrefsPath returns the preferences database path.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.DataDir, "prefs.db")
}

// LogPath returns the log file path.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "floodqa.log")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads .env from the working directory, then the config file, then
// applies environment overrides, defaults and validation.
func Load() (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	path, err := ActivePath()
	if err != nil {
		cfg := Default()
		return finish(cfg)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads a specific file. The format follows the extension;
// anything other than .json is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes cfg to path in the format given by its extension.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if strings.HasSuffix(path, ".json") {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return os.WriteFile(path, append(data, '\n'), 0600)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString("# floodqa configuration\n\n"); err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a single invalid setting.
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

// Validate checks every setting and returns ValidateErrors listing all
// problems, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Query
	// ==========================================================================

	if u, err := url.Parse(c.Query.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "query.endpoint",
			Message: fmt.Sprintf("invalid URL '%s'", c.Query.Endpoint),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "query.endpoint",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	}
	if c.Query.Timeout.D() <= 0 {
		errs = append(errs, ValidationError{
			Field:   "query.timeout",
			Message: "must be positive",
		})
	}
	if c.Query.RatePerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "query.rate_per_second",
			Message: "cannot be negative",
		})
	}

	// ==========================================================================
	// Map
	// ==========================================================================

	if c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		errs = append(errs, ValidationError{
			Field:   "map.center_lng",
			Message: fmt.Sprintf("must be within [-180, 180], got %g", c.Map.CenterLng),
		})
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, ValidationError{
			Field:   "map.center_lat",
			Message: fmt.Sprintf("must be within [-90, 90], got %g", c.Map.CenterLat),
		})
	}
	for field, z := range map[string]float64{"map.zoom": c.Map.Zoom, "map.fly_zoom": c.Map.FlyZoom} {
		if z < 1 || z > 18 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("must be within [1, 18], got %g", z),
			})
		}
	}
	if c.Map.FlyDuration.D() < 0 {
		errs = append(errs, ValidationError{
			Field:   "map.fly_duration",
			Message: "cannot be negative",
		})
	}

	// ==========================================================================
	// UI
	// ==========================================================================

	if c.UI.HistorySize < 1 || c.UI.HistorySize > 1000 {
		errs = append(errs, ValidationError{
			Field:   "ui.history_size",
			Message: fmt.Sprintf("must be within [1, 1000], got %d", c.UI.HistorySize),
		})
	}
	if c.UI.JumpThreshold < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.jump_threshold",
			Message: "cannot be negative",
		})
	}
	if c.UI.LineRevealDelay.D() < 0 || c.UI.LineRevealDelay.D() > 5*time.Second {
		errs = append(errs, ValidationError{
			Field:   "ui.line_reveal_delay",
			Message: "must be within [0s, 5s]",
		})
	}

	// ==========================================================================
	// Log
	// ==========================================================================

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills settings left empty by a partial file.
func (c *Config) SetDefaults() {
	def := Default()

	if c.DataDir == "" {
		if dir, err := ConfigDir(); err == nil {
			c.DataDir = dir
		} else {
			c.DataDir = ".floodqa"
		}
	}
	if c.Query.Endpoint == "" {
		c.Query.Endpoint = def.Query.Endpoint
	}
	if c.Query.Timeout == 0 {
		c.Query.Timeout = def.Query.Timeout
	}
	if c.Map.Zoom == 0 {
		c.Map.Zoom = def.Map.Zoom
	}
	if c.Map.FlyZoom == 0 {
		c.Map.FlyZoom = def.Map.FlyZoom
	}
	if c.UI.HistorySize == 0 {
		c.UI.HistorySize = def.UI.HistorySize
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies FLOODQA_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	// FLOODQA_ENDPOINT
	if endpoint := os.Getenv("FLOODQA_ENDPOINT"); endpoint != "" {
		c.Query.Endpoint = endpoint
	}

	// FLOODQA_TIMEOUT
	if timeout := os.Getenv("FLOODQA_TIMEOUT"); timeout != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(timeout)); err == nil {
			c.Query.Timeout = d
		}
	}

	// FLOODQA_LOG_LEVEL
	if level := os.Getenv("FLOODQA_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	// FLOODQA_DATA_DIR
	if dir := os.Getenv("FLOODQA_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "query.timeout").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks key through the struct tree.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s (valid keys: %s)",
				strings.Join(parts[:i+1], "."), strings.Join(GetAllKeys(), ", "))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

var durationType = reflect.TypeOf(Duration(0))

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		if field.Type() == durationType {
			var d Duration
			if err := d.UnmarshalText([]byte(strVal)); err != nil {
				return fmt.Errorf("invalid duration value: %v", err)
			}
			field.Set(reflect.ValueOf(d))
			return nil
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"data_dir",
		"query.endpoint",
		"query.timeout",
		"query.rate_per_second",
		"map.center_lng",
		"map.center_lat",
		"map.zoom",
		"map.fly_zoom",
		"map.fly_duration",
		"ui.history_size",
		"ui.jump_threshold",
		"ui.line_reveal_delay",
		"ui.markdown",
		"ui.suggestions",
		"ui.mouse",
		"log.level",
		"log.file",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.UI.Suggestions = append([]string(nil), c.UI.Suggestions...)
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Package config loads scorecard-mcp settings from defaults, an optional
// YAML file and SCORECARD_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/scorecard-mcp/internal/imaging"
	"github.com/ironsheep/scorecard-mcp/internal/ocr"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// EnvPrefix is prepended to every environment variable, e.g.
// SCORECARD_DETECTOR_BACKEND for detector.backend.
const EnvPrefix = "SCORECARD"

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File, when set, sends logs to a rotated file instead of stderr.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DetectorConfig selects and tunes the text detector.
type DetectorConfig struct {
	Backend    string        `mapstructure:"backend"`
	Language   string        `mapstructure:"language"`
	EasyOCRURL string        `mapstructure:"easyocr_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Preprocess bool          `mapstructure:"preprocess"`
}

// Config is the resolved configuration.
type Config struct {
	Log      LogConfig
	Detector DetectorConfig
	// Preset is the engine preset the thresholds started from.
	Preset string
	// Engine holds the preset with any engine.* overrides applied.
	Engine scorecard.Config
	// File is the config file that was read, if any.
	File string
}

// engineKeys lists the mapstructure names of every scorecard.Config field.
func engineKeys() []string {
	t := reflect.TypeOf(scorecard.Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("mapstructure"); tag != "" {
			keys = append(keys, tag)
		}
	}
	return keys
}

// New returns a viper instance with defaults and environment binding set.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("detector.backend", ocr.BackendTesseract)
	v.SetDefault("detector.language", "eng")
	v.SetDefault("detector.easyocr_url", "http://localhost:5001")
	v.SetDefault("detector.timeout", "30s")
	v.SetDefault("detector.preprocess", true)

	v.SetDefault("engine.preset", "default")

	// Engine thresholds have no defaults here so that only explicit
	// overrides replace the preset's values. Bind them so environment
	// variables are still seen by UnmarshalKey.
	for _, k := range engineKeys() {
		_ = v.BindEnv("engine." + k)
	}
	return v
}

// findConfigFile resolves the config path: explicit, then ./scorecard.yaml,
// then the user config directory.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	if _, err := os.Stat("scorecard.yaml"); err == nil {
		return "scorecard.yaml", nil
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "scorecard-mcp", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load reads the config file (if any) into v and resolves the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	path, err := findConfigFile(file)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	preset := v.GetString("engine.preset")
	engine, err := scorecard.Preset(preset)
	if err != nil {
		return nil, err
	}
	engine.DetectionTimeout = v.GetDuration("detector.timeout")

	// Unmarshal works from AllSettings, which merges defaults, file and
	// environment per leaf key. Decoding into the preset keeps every
	// engine field the user did not set.
	raw := struct {
		Log      LogConfig        `mapstructure:"log"`
		Detector DetectorConfig   `mapstructure:"detector"`
		Engine   scorecard.Config `mapstructure:"engine"`
	}{Engine: engine}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg := &Config{
		Log:      raw.Log,
		Detector: raw.Detector,
		Preset:   preset,
		Engine:   raw.Engine,
		File:     path,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	switch c.Detector.Backend {
	case ocr.BackendTesseract:
	case ocr.BackendEasyOCR:
		if c.Detector.EasyOCRURL == "" {
			return fmt.Errorf("detector.easyocr_url is required for the easyocr backend")
		}
	default:
		return fmt.Errorf("unknown detector.backend %q", c.Detector.Backend)
	}
	if c.Detector.Timeout <= 0 {
		return fmt.Errorf("detector.timeout must be positive, got %v", c.Detector.Timeout)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// OCROptions returns detector options for ocr.New.
func (c *Config) OCROptions(logger *slog.Logger) ocr.Options {
	opts := ocr.Options{
		Backend:    c.Detector.Backend,
		Language:   c.Detector.Language,
		EasyOCRURL: c.Detector.EasyOCRURL,
		Timeout:    c.Detector.Timeout,
		Logger:     logger,
	}
	if c.Detector.Preprocess {
		opts.Preprocess = imaging.DefaultPreprocess()
	}
	return opts
}

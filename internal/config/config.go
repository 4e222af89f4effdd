package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"

	"github.com/clickshot/clickshot/internal/logger"
)

// Shape names accepted for the click marker
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
)

// Image formats accepted for capture output
const (
	FormatPNG = "png"
	FormatJPG = "jpg"
)

// ErrUnsupportedShape is returned when the configured marker shape is
// neither rectangle nor circle.
var ErrUnsupportedShape = errors.New("unsupported annotation shape")

var hexColorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// AnnotationConfig holds the click marker style
type AnnotationConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Shape     string `yaml:"shape" mapstructure:"shape"`
	Color     string `yaml:"color" mapstructure:"color"`
	LineWidth int    `yaml:"line_width" mapstructure:"line_width"`
	Size      int    `yaml:"size" mapstructure:"size"`
	Padding   int    `yaml:"padding" mapstructure:"padding"`
}

// CaptureConfig holds capture timing and output format
type CaptureConfig struct {
	Format  string `yaml:"format" mapstructure:"format"`
	DelayMs int    `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// HotkeyConfig holds the manual trigger key combination
type HotkeyConfig struct {
	Trigger string `yaml:"trigger" mapstructure:"trigger"`
}

// GifConfig controls the zoom-to-click GIF generated next to each capture
type GifConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Config is the top-level tool configuration
type Config struct {
	Annotation AnnotationConfig `yaml:"annotation" mapstructure:"annotation"`
	Capture    CaptureConfig    `yaml:"capture" mapstructure:"capture"`
	Hotkey     HotkeyConfig     `yaml:"hotkey" mapstructure:"hotkey"`
	Gif        GifConfig        `yaml:"gif" mapstructure:"gif"`
	LogLevel   string           `yaml:"log_level" mapstructure:"log_level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Annotation: AnnotationConfig{
			Enabled:   true,
			Shape:     ShapeRectangle,
			Color:     "#FF3B30",
			LineWidth: 3,
			Size:      40,
			Padding:   8,
		},
		Capture: CaptureConfig{
			Format:  FormatPNG,
			DelayMs: 100,
		},
		Hotkey: HotkeyConfig{
			Trigger: "ctrl+shift+s",
		},
		Gif: GifConfig{
			Enabled: true,
		},
		LogLevel: "info",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("annotation.enabled", d.Annotation.Enabled)
	v.SetDefault("annotation.shape", d.Annotation.Shape)
	v.SetDefault("annotation.color", d.Annotation.Color)
	v.SetDefault("annotation.line_width", d.Annotation.LineWidth)
	v.SetDefault("annotation.size", d.Annotation.Size)
	v.SetDefault("annotation.padding", d.Annotation.Padding)
	v.SetDefault("capture.format", d.Capture.Format)
	v.SetDefault("capture.delay_ms", d.Capture.DelayMs)
	v.SetDefault("hotkey.trigger", d.Hotkey.Trigger)
	v.SetDefault("gif.enabled", d.Gif.Enabled)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the configuration file, falling back to defaults when no file
// exists. An explicit path that cannot be parsed is an error; a missing
// default config file is not.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "clickshot"))
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			logger.WithComponent("config").Debug().
				Str("path", path).
				Msg("No config file found, using defaults")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		logger.WithComponent("config").Info().
			Str("path", v.ConfigFileUsed()).
			Msg("Config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration before any listening starts. All
// violations here are fatal at startup.
func (c *Config) Validate() error {
	switch c.Annotation.Shape {
	case ShapeRectangle, ShapeCircle:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedShape, c.Annotation.Shape)
	}

	if !hexColorRe.MatchString(c.Annotation.Color) {
		return fmt.Errorf("invalid annotation color %q (expected hex like #FF3B30)", c.Annotation.Color)
	}
	if c.Annotation.LineWidth <= 0 {
		return fmt.Errorf("annotation line_width must be positive, got %d", c.Annotation.LineWidth)
	}
	if c.Annotation.Size <= 0 {
		return fmt.Errorf("annotation size must be positive, got %d", c.Annotation.Size)
	}
	if c.Annotation.Padding < 0 {
		return fmt.Errorf("annotation padding must not be negative, got %d", c.Annotation.Padding)
	}

	switch c.Capture.Format {
	case FormatPNG, FormatJPG:
	default:
		return fmt.Errorf("unsupported capture format %q (use png or jpg)", c.Capture.Format)
	}
	if c.Capture.DelayMs < 0 {
		return fmt.Errorf("capture delay_ms must not be negative, got %d", c.Capture.DelayMs)
	}

	if c.Hotkey.Trigger == "" {
		return errors.New("hotkey trigger must not be empty")
	}

	return nil
}

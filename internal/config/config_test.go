package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Annotation.Enabled)
	assert.Equal(t, ShapeRectangle, cfg.Annotation.Shape)
	assert.Equal(t, "#FF3B30", cfg.Annotation.Color)
	assert.Equal(t, 3, cfg.Annotation.LineWidth)
	assert.Equal(t, 40, cfg.Annotation.Size)
	assert.Equal(t, 8, cfg.Annotation.Padding)
	assert.Equal(t, FormatPNG, cfg.Capture.Format)
	assert.Equal(t, 100, cfg.Capture.DelayMs)
	assert.Equal(t, "ctrl+shift+s", cfg.Hotkey.Trigger)
	assert.True(t, cfg.Gif.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
annotation:
  enabled: false
  color: "#00FF00"
  size: 60
capture:
  delay_ms: 200
  format: jpg
hotkey:
  trigger: ctrl+shift+x
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Annotation.Enabled)
	assert.Equal(t, "#00FF00", cfg.Annotation.Color)
	assert.Equal(t, 60, cfg.Annotation.Size)
	assert.Equal(t, 200, cfg.Capture.DelayMs)
	assert.Equal(t, FormatJPG, cfg.Capture.Format)
	assert.Equal(t, "ctrl+shift+x", cfg.Hotkey.Trigger)

	// Unset values keep defaults
	assert.Equal(t, ShapeRectangle, cfg.Annotation.Shape)
	assert.Equal(t, 3, cfg.Annotation.LineWidth)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Annotation.Enabled)
	assert.Equal(t, FormatPNG, cfg.Capture.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unsupported shape",
			mutate:  func(c *Config) { c.Annotation.Shape = "triangle" },
			wantErr: "unsupported annotation shape",
		},
		{
			name:    "bad color",
			mutate:  func(c *Config) { c.Annotation.Color = "red" },
			wantErr: "invalid annotation color",
		},
		{
			name:    "zero line width",
			mutate:  func(c *Config) { c.Annotation.LineWidth = 0 },
			wantErr: "line_width must be positive",
		},
		{
			name:    "negative padding",
			mutate:  func(c *Config) { c.Annotation.Padding = -1 },
			wantErr: "padding must not be negative",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Capture.Format = "bmp" },
			wantErr: "unsupported capture format",
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.Capture.DelayMs = -5 },
			wantErr: "delay_ms must not be negative",
		},
		{
			name:    "empty hotkey",
			mutate:  func(c *Config) { c.Hotkey.Trigger = "" },
			wantErr: "hotkey trigger must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateShapeSentinel(t *testing.T) {
	cfg := Default()
	cfg.Annotation.Shape = "star"
	assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedShape)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()

	enabled := false
	color := "#123456"
	size := 99
	delay := 250
	format := FormatJPG

	cfg.Apply(Overrides{
		AnnotationEnabled: &enabled,
		AnnotationColor:   &color,
		AnnotationSize:    &size,
		DelayMs:           &delay,
		Format:            &format,
	})

	assert.False(t, cfg.Annotation.Enabled)
	assert.Equal(t, "#123456", cfg.Annotation.Color)
	assert.Equal(t, 99, cfg.Annotation.Size)
	assert.Equal(t, 250, cfg.Capture.DelayMs)
	assert.Equal(t, FormatJPG, cfg.Capture.Format)

	// Untouched fields survive
	assert.Equal(t, "ctrl+shift+s", cfg.Hotkey.Trigger)
	assert.True(t, cfg.Gif.Enabled)
}

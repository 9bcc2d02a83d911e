package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("CANVAS")
	v.AutomaticEnv()
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := FromViper(newViper(t))

	assert.Equal(t, DefaultURL, cfg.URL)
	assert.Equal(t, DefaultDiagramDir, cfg.DiagramDir)
	assert.Equal(t, DefaultCaptureSource, cfg.CaptureSource)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Empty(t, cfg.ADBDevice)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Desktop"), cfg.ScreenshotDir)
}

func TestFromViperEnvOverrides(t *testing.T) {
	t.Setenv("CANVAS_URL", "http://10.0.0.5:9090")
	t.Setenv("CANVAS_SCREENSHOT_DIR", "/tmp/shots")
	t.Setenv("CANVAS_DIAGRAM_DIR", "sketches")
	t.Setenv("CANVAS_ADB_DEVICE", "SN123456")
	t.Setenv("CANVAS_CAPTURE_SOURCE", "folder")
	t.Setenv("CANVAS_PORT", "8099")

	cfg := FromViper(newViper(t))

	assert.Equal(t, "http://10.0.0.5:9090", cfg.URL)
	assert.Equal(t, "/tmp/shots", cfg.ScreenshotDir)
	assert.Equal(t, "sketches", cfg.DiagramDir)
	assert.Equal(t, "SN123456", cfg.ADBDevice)
	assert.Equal(t, "folder", cfg.CaptureSource)
	assert.Equal(t, "8099", cfg.Port)
}

func TestFromViperExplicitBeatsDefault(t *testing.T) {
	v := newViper(t)
	v.Set("screenshot_dir", "/var/screens")

	cfg := FromViper(v)
	assert.Equal(t, "/var/screens", cfg.ScreenshotDir)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~/Desktop", filepath.Join(home, "Desktop")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~user/Desktop", "~user/Desktop"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandHome(tt.in), "input %q", tt.in)
	}
}

// Package config holds the canvas configuration surface: the remote tablet
// UI URL, the screenshot source directory, the diagram output directory, and
// the capture knobs. Every value has a default, a yaml key, and a CANVAS_*
// environment override.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults. The URL is intentionally a non-personal placeholder on a private
// LAN; users point it at their own tablet's web UI.
const (
	DefaultURL           = "http://192.168.0.100:8080"
	DefaultDiagramDir    = "diagrams"
	DefaultCaptureSource = "auto"
	DefaultPort          = "7521"
)

// Config carries the resolved canvas settings. Fields stay mutable so a
// caller can adjust them after loading, the same way the knobs were
// module-level variables in earlier incarnations of this tool.
type Config struct {
	// URL is the remote tablet web UI shown in the embedded view.
	URL string `json:"url" yaml:"url"`

	// ScreenshotDir is where OS screenshots land (default ~/Desktop).
	ScreenshotDir string `json:"screenshotDir" yaml:"screenshot_dir"`

	// DiagramDir receives copied screenshots (default "diagrams").
	DiagramDir string `json:"diagramDir" yaml:"diagram_dir"`

	// ADBDevice is an optional ADB device serial for USB capture.
	ADBDevice string `json:"adbDevice,omitempty" yaml:"adb_device"`

	// CaptureSource pins the capture method: auto, adb, screen or folder.
	CaptureSource string `json:"captureSource" yaml:"capture_source"`

	// Port is the listen port for the canvas server.
	Port string `json:"port" yaml:"port"`
}

// SetDefaults registers the canvas defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("url", DefaultURL)
	v.SetDefault("screenshot_dir", defaultScreenshotDir())
	v.SetDefault("diagram_dir", DefaultDiagramDir)
	v.SetDefault("adb_device", "")
	v.SetDefault("capture_source", DefaultCaptureSource)
	v.SetDefault("port", DefaultPort)
}

// FromViper builds a Config from v, expanding a leading ~ in directory paths.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		URL:           v.GetString("url"),
		ScreenshotDir: expandHome(v.GetString("screenshot_dir")),
		DiagramDir:    expandHome(v.GetString("diagram_dir")),
		ADBDevice:     v.GetString("adb_device"),
		CaptureSource: v.GetString("capture_source"),
		Port:          v.GetString("port"),
	}
}

func defaultScreenshotDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Desktop")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

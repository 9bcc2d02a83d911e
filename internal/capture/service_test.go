package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabletcanvas/internal/config"
)

var destNamePattern = regexp.MustCompile(`^diagram_\d{8}_\d{6}(_\d+)?\.(png|jpg|jpeg)$`)

// newTestService builds a Service over temp directories with a fixed clock.
func newTestService(t *testing.T) (*Service, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		URL:           "http://tablet.local:8080",
		ScreenshotDir: t.TempDir(),
		DiagramDir:    filepath.Join(t.TempDir(), "diagrams"),
		CaptureSource: "folder",
	}
	svc := NewService(cfg)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	}
	return svc, cfg
}

func TestCaptureFolder(t *testing.T) {
	svc, cfg := newTestService(t)
	src := writeImage(t, cfg.ScreenshotDir, "shot.png", time.Now())

	c, err := svc.Capture(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceFolder, c.Source)
	assert.Equal(t, filepath.Base(src), filepath.Base(c.SourcePath))
	assert.Equal(t, "20260314_150926", c.Timestamp)
	assert.Equal(t, "diagram_20260314_150926.png", filepath.Base(c.DestPath))
	assert.True(t, destNamePattern.MatchString(filepath.Base(c.DestPath)))

	// The destination file exists and holds the source bytes.
	data, err := os.ReadFile(c.DestPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)

	// The markup references exactly the produced destination path.
	assert.Equal(t, fmt.Sprintf("![Diagram](%s)", filepath.ToSlash(c.DestPath)), c.Markdown)
}

func TestCapturePreservesExtension(t *testing.T) {
	svc, cfg := newTestService(t)
	writeImage(t, cfg.ScreenshotDir, "photo.JPG", time.Now())

	c, err := svc.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(c.DestPath))
}

func TestCapturePicksNewestScreenshot(t *testing.T) {
	svc, cfg := newTestService(t)
	base := time.Now().Add(-time.Hour)
	writeImage(t, cfg.ScreenshotDir, "first.png", base)
	writeImage(t, cfg.ScreenshotDir, "second.jpeg", base.Add(time.Minute))

	c, err := svc.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second.jpeg", filepath.Base(c.SourcePath))
}

func TestCaptureCollisionSuffix(t *testing.T) {
	svc, cfg := newTestService(t)
	writeImage(t, cfg.ScreenshotDir, "shot.png", time.Now())

	first, err := svc.Capture(context.Background())
	require.NoError(t, err)
	second, err := svc.Capture(context.Background())
	require.NoError(t, err)
	third, err := svc.Capture(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "diagram_20260314_150926.png", filepath.Base(first.DestPath))
	assert.Equal(t, "diagram_20260314_150926_2.png", filepath.Base(second.DestPath))
	assert.Equal(t, "diagram_20260314_150926_3.png", filepath.Base(third.DestPath))
}

func TestCaptureNoScreenshot(t *testing.T) {
	svc, cfg := newTestService(t)

	_, err := svc.Capture(context.Background())
	assert.ErrorIs(t, err, ErrNoScreenshot)

	// No copy happened: the diagram directory was never created.
	assert.NoDirExists(t, cfg.DiagramDir)
}

func TestCaptureScreen(t *testing.T) {
	svc, _ := newTestService(t)
	svc.grabScreen = func() ([]byte, error) {
		return []byte("fake png"), nil
	}

	c, err := svc.CaptureFrom(context.Background(), SourceScreen)
	require.NoError(t, err)

	assert.Equal(t, SourceScreen, c.Source)
	assert.Empty(t, c.SourcePath)
	assert.Equal(t, ".png", filepath.Ext(c.DestPath))

	data, err := os.ReadFile(c.DestPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png"), data)
}

func TestCaptureScreenError(t *testing.T) {
	svc, _ := newTestService(t)
	svc.grabScreen = func() ([]byte, error) {
		return nil, errors.New("no active displays")
	}

	_, err := svc.CaptureFrom(context.Background(), SourceScreen)
	assert.ErrorContains(t, err, "no active displays")
}

func TestCaptureFromEmptySourceUsesConfigured(t *testing.T) {
	svc, cfg := newTestService(t)
	cfg.CaptureSource = "screen"
	svc.grabScreen = func() ([]byte, error) {
		return []byte("pinned"), nil
	}

	c, err := svc.CaptureFrom(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, SourceScreen, c.Source)

	data, err := os.ReadFile(c.DestPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("pinned"), data)
}

func TestCaptureUnknownSource(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CaptureFrom(context.Background(), Source("carrier-pigeon"))
	assert.ErrorContains(t, err, "unknown capture source")
}

func TestCaptureUpload(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.CaptureUpload("sketch.jpeg", []byte("uploaded"))
	require.NoError(t, err)

	assert.Equal(t, SourceUpload, c.Source)
	assert.Equal(t, ".jpeg", filepath.Ext(c.DestPath))

	data, err := os.ReadFile(c.DestPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("uploaded"), data)
}

func TestCaptureUploadDefaultsExtension(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.CaptureUpload("no-extension", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(c.DestPath))
}

func TestCaptureUploadForeignExtension(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.CaptureUpload("sketch.exe", []byte("bytes"))
	require.NoError(t, err)

	// Non-image extensions fall back to .png so the diagram listing and
	// the preview route can see the file.
	assert.Equal(t, ".png", filepath.Ext(c.DestPath))

	diagrams, err := svc.ListDiagrams(0)
	require.NoError(t, err)
	require.Len(t, diagrams, 1)
	assert.Equal(t, filepath.Base(c.DestPath), diagrams[0].Name)
}

func TestCaptureUploadEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CaptureUpload("empty.png", nil)
	assert.ErrorContains(t, err, "empty upload")
}

func TestListDiagrams(t *testing.T) {
	svc, cfg := newTestService(t)
	require.NoError(t, os.MkdirAll(cfg.DiagramDir, 0o755))

	base := time.Now().Add(-time.Hour)
	writeImage(t, cfg.DiagramDir, "diagram_20260101_000000.png", base)
	writeImage(t, cfg.DiagramDir, "diagram_20260201_000000.png", base.Add(time.Minute))
	writeImage(t, cfg.DiagramDir, "diagram_20260301_000000.png", base.Add(2*time.Minute))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DiagramDir, "notes.txt"), []byte("x"), 0o644))

	diagrams, err := svc.ListDiagrams(0)
	require.NoError(t, err)
	require.Len(t, diagrams, 3)
	assert.Equal(t, "diagram_20260301_000000.png", diagrams[0].Name)
	assert.Equal(t, "diagram_20260101_000000.png", diagrams[2].Name)

	limited, err := svc.ListDiagrams(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListDiagramsMissingDir(t *testing.T) {
	svc, _ := newTestService(t)

	diagrams, err := svc.ListDiagrams(10)
	require.NoError(t, err)
	assert.Nil(t, diagrams)
}

func TestRenderMarkdown(t *testing.T) {
	svc, _ := newTestService(t)

	html := svc.RenderMarkdown("![Diagram](diagrams/diagram_20260314_150926.png)")
	assert.Contains(t, html, `<img src="diagrams/diagram_20260314_150926.png"`)
}

func TestHasConnectedDevice(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want bool
	}{
		{"device attached", "List of devices attached\nSN123456\tdevice\n", true},
		{"unauthorized only", "List of devices attached\nSN123456\tunauthorized\n", false},
		{"header only", "List of devices attached\n", false},
		{"empty output", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasConnectedDevice(tt.out))
		})
	}
}

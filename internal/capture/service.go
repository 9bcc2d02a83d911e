package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"tabletcanvas/internal/config"
)

// timestampLayout is the stamp embedded in destination filenames:
// diagram_<YYYYmmdd_HHMMSS>.<ext>
const timestampLayout = "20060102_150405"

// Service performs the capture-and-present action: acquire image bytes,
// copy them into the diagram directory under a timestamped name, and build
// the embedding markup.
type Service struct {
	cfg *config.Config
	adb *ADB
	md  goldmark.Markdown

	// Seams for tests.
	grabScreen func() ([]byte, error)
	now        func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:        cfg,
		adb:        &ADB{Serial: cfg.ADBDevice},
		md:         goldmark.New(),
		grabScreen: GrabScreen,
		now:        time.Now,
	}
}

// Config returns the live configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// ADBReady reports whether USB capture can be attempted right now.
func (s *Service) ADBReady(ctx context.Context) bool {
	return s.adb.Available(ctx) && s.adb.DeviceConnected(ctx)
}

// Capture runs the configured capture source. In auto mode it tries USB
// first and falls back to the screenshot folder; the screen grab only runs
// when pinned explicitly, since it would otherwise always win and capture
// the whole desktop rather than the region the user chose.
func (s *Service) Capture(ctx context.Context) (*Capture, error) {
	return s.CaptureFrom(ctx, Source(s.cfg.CaptureSource))
}

// CaptureFrom runs a specific capture source. An empty source resolves to
// the configured one, so every surface honors a pinned capture_source.
func (s *Service) CaptureFrom(ctx context.Context, src Source) (*Capture, error) {
	if src == "" {
		src = Source(s.cfg.CaptureSource)
	}
	switch src {
	case SourceADB:
		return s.captureADB(ctx)
	case SourceScreen:
		return s.captureScreen()
	case SourceFolder:
		return s.captureFolder()
	case SourceAuto, "":
		if s.ADBReady(ctx) {
			if c, err := s.captureADB(ctx); err == nil {
				return c, nil
			}
		}
		return s.captureFolder()
	default:
		return nil, fmt.Errorf("unknown capture source %q", src)
	}
}

// CaptureUpload stores already-acquired image bytes, e.g. from a browser
// upload when the canvas page is viewed from another machine.
func (s *Service) CaptureUpload(filename string, data []byte) (*Capture, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	return s.save(data, filename, SourceUpload)
}

func (s *Service) captureADB(ctx context.Context) (*Capture, error) {
	data, err := s.adb.Screencap(ctx)
	if err != nil {
		return nil, err
	}
	return s.save(data, "", SourceADB)
}

func (s *Service) captureScreen() (*Capture, error) {
	data, err := s.grabScreen()
	if err != nil {
		return nil, err
	}
	return s.save(data, "", SourceScreen)
}

func (s *Service) captureFolder() (*Capture, error) {
	src, err := LatestScreenshot(s.cfg.ScreenshotDir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read screenshot %s: %w", src, err)
	}
	c, err := s.save(data, src, SourceFolder)
	if err != nil {
		return nil, err
	}
	c.SourcePath = src
	return c, nil
}

// save writes data into the diagram directory under a timestamped name and
// builds the capture record. The extension comes from srcName when it is on
// the image allow-list, defaulting to .png so the listing and preview can
// always see the file. A name collision within the same second gets a
// numeric suffix rather than overwriting.
func (s *Service) save(data []byte, srcName string, source Source) (*Capture, error) {
	ext := ".png"
	if e := strings.ToLower(filepath.Ext(srcName)); imageExts[e] {
		ext = e
	}

	if err := os.MkdirAll(s.cfg.DiagramDir, 0o755); err != nil {
		return nil, fmt.Errorf("create diagram directory %s: %w", s.cfg.DiagramDir, err)
	}

	now := s.now()
	stamp := now.Format(timestampLayout)
	dest := filepath.Join(s.cfg.DiagramDir, "diagram_"+stamp+ext)
	for i := 2; ; i++ {
		if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dest = filepath.Join(s.cfg.DiagramDir, fmt.Sprintf("diagram_%s_%d%s", stamp, i, ext))
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", dest, err)
	}

	return &Capture{
		DestPath:   dest,
		Timestamp:  stamp,
		Markdown:   fmt.Sprintf("![Diagram](%s)", filepath.ToSlash(dest)),
		Source:     source,
		CapturedAt: now,
	}, nil
}

// ListDiagrams returns up to limit image files from the diagram directory,
// newest first. A missing directory is an empty listing, not an error.
func (s *Service) ListDiagrams(limit int) ([]Diagram, error) {
	entries, err := os.ReadDir(s.cfg.DiagramDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read diagram directory %s: %w", s.cfg.DiagramDir, err)
	}

	var diagrams []Diagram
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		diagrams = append(diagrams, Diagram{
			Name:    entry.Name(),
			Path:    filepath.ToSlash(filepath.Join(s.cfg.DiagramDir, entry.Name())),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(diagrams, func(i, j int) bool {
		return diagrams[i].ModTime.After(diagrams[j].ModTime)
	})
	if limit > 0 && len(diagrams) > limit {
		diagrams = diagrams[:limit]
	}
	return diagrams, nil
}

// RenderMarkdown converts markdown content to HTML for the preview pane.
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return content // Return raw content on error
	}
	return buf.String()
}

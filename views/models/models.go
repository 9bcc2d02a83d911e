package models

import "time"

// CanvasView carries everything the canvas page needs to render.
type CanvasView struct {
	URL           string
	Instructions  string
	ADBReady      bool
	ScreenshotDir string
	Recent        []DiagramView
}

// CaptureView represents a finished capture for template rendering.
type CaptureView struct {
	FileName string
	Markdown string
	Source   string
}

// DiagramView represents a stored diagram for template rendering.
type DiagramView struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

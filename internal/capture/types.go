package capture

import (
	"errors"
	"time"
)

// ErrNoScreenshot is returned when no qualifying image file can be found in
// the screenshot directory. It is a user-visible condition, not a fault.
var ErrNoScreenshot = errors.New("no screenshot found")

// Source identifies how the image bytes were acquired.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceADB    Source = "adb"
	SourceScreen Source = "screen"
	SourceFolder Source = "folder"
	SourceUpload Source = "upload"
)

// Capture is the record produced by a single capture action. It is created
// fresh per invocation and discarded after rendering; the destination file
// is the only durable artifact.
type Capture struct {
	// SourcePath is the file the image came from (empty for adb, screen
	// and upload captures).
	SourcePath string `json:"sourcePath,omitempty"`

	// DestPath is the copied file under the diagram directory.
	DestPath string `json:"destPath"`

	// Timestamp is the YYYYmmdd_HHMMSS stamp embedded in the filename.
	Timestamp string `json:"timestamp"`

	// Markdown is the ready-to-paste embedding markup.
	Markdown string `json:"markdown"`

	// Source is the method that produced the image bytes.
	Source Source `json:"source"`

	CapturedAt time.Time `json:"capturedAt"`
}

// Diagram describes a previously captured file in the diagram directory.
type Diagram struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

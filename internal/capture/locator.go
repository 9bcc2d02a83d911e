package capture

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// imageExts is the fixed allow-list of screenshot extensions, matched
// case-insensitively.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// isImageFile reports whether name has one of the allowed image extensions.
func isImageFile(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// LatestScreenshot returns the absolute path of the most recently modified
// image file in dir. A missing or unreadable directory, or one with no
// qualifying files, yields ErrNoScreenshot. Entries whose metadata cannot
// be read are skipped.
func LatestScreenshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ErrNoScreenshot
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = filepath.Join(dir, entry.Name())
			bestTime = info.ModTime()
		}
	}
	if best == "" {
		return "", ErrNoScreenshot
	}
	return filepath.Abs(best)
}

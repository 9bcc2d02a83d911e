package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeImage creates a file in dir with the given modification time.
func writeImage(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestLatestScreenshot(t *testing.T) {
	base := time.Now().Add(-time.Hour)

	t.Run("picks newest by modification time", func(t *testing.T) {
		dir := t.TempDir()
		writeImage(t, dir, "old.png", base)
		writeImage(t, dir, "older.jpg", base.Add(-time.Minute))
		want := writeImage(t, dir, "newest.jpeg", base.Add(time.Minute))

		got, err := LatestScreenshot(dir)
		require.NoError(t, err)

		abs, err := filepath.Abs(want)
		require.NoError(t, err)
		assert.Equal(t, abs, got)
	})

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		dir := t.TempDir()
		want := writeImage(t, dir, "Shot.PNG", base)

		got, err := LatestScreenshot(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(want), filepath.Base(got))
	})

	t.Run("ignores non-image files and subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "archive.gif"), []byte("x"), 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))
		want := writeImage(t, dir, "real.png", base)

		got, err := LatestScreenshot(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(want), filepath.Base(got))
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := LatestScreenshot(t.TempDir())
		assert.ErrorIs(t, err, ErrNoScreenshot)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := LatestScreenshot(filepath.Join(t.TempDir(), "does-not-exist"))
		assert.ErrorIs(t, err, ErrNoScreenshot)
	})

	t.Run("only non-image files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

		_, err := LatestScreenshot(dir)
		assert.ErrorIs(t, err, ErrNoScreenshot)
	})
}

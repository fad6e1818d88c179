package slippy

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Screenshot queues a labeled capture of the raster. It is written as a PNG
// into ScreenshotDir at the end of the current Update, once the renderer has
// settled.
func (m *Map) Screenshot(label string) {
	m.screenshotQueue = append(m.screenshotQueue, label)
}

// flushScreenshots writes every queued screenshot. Failures are logged.
func (m *Map) flushScreenshots() {
	if len(m.screenshotQueue) == 0 {
		return
	}
	defer func() { m.screenshotQueue = m.screenshotQueue[:0] }()

	surface := m.renderer.Surface()
	if surface == nil {
		Logger().Warn("slippy: screenshot skipped: no raster yet")
		return
	}
	if err := os.MkdirAll(m.ScreenshotDir, 0o755); err != nil {
		Logger().Warn("slippy: screenshot", "err", fmt.Errorf("mkdir %s: %w", m.ScreenshotDir, err))
		return
	}

	m.renderer.Wait()
	img := surface.Snapshot()
	stamp := time.Now().Format("20060102_150405")
	for _, label := range m.screenshotQueue {
		path := filepath.Join(m.ScreenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			Logger().Warn("slippy: screenshot", "err", err)
		}
	}
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

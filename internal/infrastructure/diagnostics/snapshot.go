// Package diagnostics writes what the browser showed when a journey failed:
// a downscaled screenshot and a cleaned HTML dump.
package diagnostics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"

	"github.com/disintegration/imaging"
)

var _ output.SnapshotPort = (*SnapshotWriter)(nil)

type Config struct {
	Dir         string
	MaxWidth    int
	JPEGQuality int
}

func DefaultConfig() Config {
	return Config{
		Dir:         "screenshots",
		MaxWidth:    1024,
		JPEGQuality: 75,
	}
}

type SnapshotWriter struct {
	capture output.CapturePort
	logger  output.LoggerPort
	cfg     Config
	now     func() time.Time
}

func NewSnapshotWriter(capture output.CapturePort, logger output.LoggerPort, cfg Config) *SnapshotWriter {
	def := DefaultConfig()
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = def.JPEGQuality
	}
	return &SnapshotWriter{
		capture: capture,
		logger:  logger.Named("diagnostics"),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Capture writes <name>_failure_<timestamp>.jpg and .html into the configured
// directory. Each artifact is attempted independently; the snapshot lists
// whichever were written and the error joins whatever failed.
func (w *SnapshotWriter) Capture(ctx context.Context, name string) (*entity.Snapshot, error) {
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create diagnostics dir: %w", err)
	}

	base := filepath.Join(w.cfg.Dir, fmt.Sprintf("%s_failure_%s", sanitize(name), w.now().Format("20060102_150405")))
	snap := &entity.Snapshot{}
	var errs []error

	if u, err := w.capture.CurrentURL(ctx); err == nil {
		snap.URL = u
	}

	if path, err := w.writeScreenshot(ctx, base+".jpg"); err != nil {
		errs = append(errs, err)
	} else {
		snap.ScreenshotPath = path
	}

	if path, err := w.writeHTML(ctx, base+".html"); err != nil {
		errs = append(errs, err)
	} else {
		snap.HTMLPath = path
	}

	err := errors.Join(errs...)
	if err != nil {
		w.logger.Warn("Snapshot incomplete", "name", name, "error", err)
	}
	w.logger.Info("Snapshot written", "screenshot", snap.ScreenshotPath, "html", snap.HTMLPath, "url", snap.URL)
	return snap, err
}

func (w *SnapshotWriter) writeScreenshot(ctx context.Context, path string) (string, error) {
	shot, err := w.capture.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(shot.Data))
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}
	if img.Bounds().Dx() > w.cfg.MaxWidth {
		img = imaging.Resize(img, w.cfg.MaxWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(img, path, imaging.JPEGQuality(w.cfg.JPEGQuality)); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	return path, nil
}

func (w *SnapshotWriter) writeHTML(ctx context.Context, path string) (string, error) {
	raw, err := w.capture.PageHTML(ctx)
	if err != nil {
		return "", fmt.Errorf("page html: %w", err)
	}

	cleaned, err := CleanHTML(raw, nil)
	if err != nil {
		w.logger.Debug("Keeping raw HTML", "error", err)
		cleaned = raw
	}

	if err := os.WriteFile(path, []byte(cleaned), 0o644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitize(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	if s == "" || s == "_" {
		return "journey"
	}
	return s
}

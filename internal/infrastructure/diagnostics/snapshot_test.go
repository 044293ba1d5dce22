package diagnostics

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"browser-journey/internal/domain/entity"
	"browser-journey/internal/infrastructure/logger"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubCapture struct {
	width   int
	html    string
	shotErr error
}

func (s stubCapture) Screenshot(context.Context) (*entity.Screenshot, error) {
	if s.shotErr != nil {
		return nil, s.shotErr
	}
	img := imaging.New(s.width, s.width/2, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil, err
	}
	return &entity.Screenshot{Data: buf.Bytes(), Format: "jpeg", Width: s.width, Height: s.width / 2}, nil
}

func (s stubCapture) PageHTML(context.Context) (string, error) { return s.html, nil }

func (s stubCapture) CurrentURL(context.Context) (string, error) {
	return "https://useinsider.com/careers/", nil
}

func newWriter(t *testing.T, capture stubCapture) (*SnapshotWriter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "screenshots")
	w := NewSnapshotWriter(capture, logger.FromZap(zaptest.NewLogger(t)), Config{Dir: dir})
	w.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }
	return w, dir
}

func TestCapture_WritesDownscaledScreenshotAndCleanHTML(t *testing.T) {
	w, dir := newWriter(t, stubCapture{
		width: 1920,
		html:  `<html><head><title>Careers</title><script>x()</script></head><body><p>Jobs</p></body></html>`,
	})

	snap, err := w.Capture(context.Background(), "qa-jobs")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "qa-jobs_failure_20261015_093000.jpg"), snap.ScreenshotPath)
	assert.Equal(t, filepath.Join(dir, "qa-jobs_failure_20261015_093000.html"), snap.HTMLPath)
	assert.Equal(t, "https://useinsider.com/careers/", snap.URL)

	img, err := imaging.Open(snap.ScreenshotPath)
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())

	html, err := os.ReadFile(snap.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<p>Jobs</p>")
	assert.NotContains(t, string(html), "<script>")
}

func TestCapture_SmallScreenshotKeepsSize(t *testing.T) {
	w, _ := newWriter(t, stubCapture{width: 800, html: "<p>x</p>"})

	snap, err := w.Capture(context.Background(), "homepage")
	require.NoError(t, err)

	img, err := imaging.Open(snap.ScreenshotPath)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestCapture_PartialFailureKeepsHTML(t *testing.T) {
	boom := errors.New("target closed")
	w, _ := newWriter(t, stubCapture{shotErr: boom, html: "<p>x</p>"})

	snap, err := w.Capture(context.Background(), "view role/redirect")

	assert.ErrorIs(t, err, boom)
	require.NotNil(t, snap)
	assert.Empty(t, snap.ScreenshotPath)
	assert.FileExists(t, snap.HTMLPath)
	assert.Contains(t, filepath.Base(snap.HTMLPath), "view_role_redirect_failure_")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "qa-jobs", sanitize("qa-jobs"))
	assert.Equal(t, "a_b", sanitize("a / b"))
	assert.Equal(t, "journey", sanitize("///"))
}

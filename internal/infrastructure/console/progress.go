package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*Progress)(nil)

// Progress prints journey progress for a human watching the run.
type Progress struct {
	out io.Writer
}

func NewProgress() *Progress {
	return NewProgressTo(os.Stdout)
}

func NewProgressTo(w io.Writer) *Progress {
	return &Progress{out: w}
}

func (p *Progress) ShowJourneyStart(ctx context.Context, journey, runID string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(p.out, "\n━━━ %s ━━━\n", journey)

	dim := color.New(color.Faint)
	dim.Fprintf(p.out, "   run %s\n", runID)
}

func (p *Progress) ShowStep(ctx context.Context, rec entity.StepRecord) {
	icon, c := stepDisplay(rec.Status)
	c.Fprintf(p.out, "%s %s", icon, rec.Name)

	dim := color.New(color.Faint)
	dim.Fprintf(p.out, "  [%s, %s]\n", rec.State, rec.Duration.Round(time.Millisecond))

	if rec.Err != nil && rec.Status == entity.StepFailed {
		dim.Fprintf(p.out, "   %s\n", truncate(rec.Err.Error(), 300))
	}
}

func (p *Progress) ShowDiagnostic(ctx context.Context, d entity.Diagnostic) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(p.out, "   ⚠ %s\n", truncate(d.Message, 300))

	if len(d.Candidates) > 0 {
		dim := color.New(color.Faint)
		dim.Fprintf(p.out, "   options: %s\n", truncate(strings.Join(d.Candidates, ", "), 200))
	}
}

func (p *Progress) ShowJourneyResult(ctx context.Context, res *entity.JourneyResult) {
	if res == nil {
		return
	}

	summary := fmt.Sprintf("%s in %s", res.State, res.Duration().Round(time.Millisecond))
	if n := len(res.Diagnostics); n > 0 {
		summary += fmt.Sprintf(", %d diagnostic(s)", n)
	}

	if res.Passed() {
		green := color.New(color.FgGreen, color.Bold)
		green.Fprintf(p.out, "✓ %s: %s\n", res.Journey, summary)
	} else {
		red := color.New(color.FgRed, color.Bold)
		red.Fprintf(p.out, "✗ %s: %s\n", res.Journey, summary)
	}

	dim := color.New(color.Faint)
	if res.FinalURL != "" {
		dim.Fprintf(p.out, "   at %s\n", res.FinalURL)
	}
	if res.Snapshot != nil {
		dim.Fprintf(p.out, "   screenshot %s\n", res.Snapshot.ScreenshotPath)
	}
}

func stepDisplay(status entity.StepStatus) (string, *color.Color) {
	switch status {
	case entity.StepPassed:
		return "✓", color.New(color.FgGreen)
	case entity.StepSoftFailed:
		return "~", color.New(color.FgYellow)
	default:
		return "✗", color.New(color.FgRed)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package output

import (
	"context"

	"browser-journey/internal/domain/entity"
)

type ProgressPort interface {
	ShowJourneyStart(ctx context.Context, journey, runID string)
	ShowStep(ctx context.Context, record entity.StepRecord)
	ShowDiagnostic(ctx context.Context, d entity.Diagnostic)
	ShowJourneyResult(ctx context.Context, result *entity.JourneyResult)
}

package input

import (
	"context"

	"browser-journey/internal/domain/entity"
)

type JourneyRunner interface {
	Run(ctx context.Context, name string) (*entity.JourneyResult, error)
	Names() []string
}

package outbound

import (
	"context"

	"github.com/AnantSoni360/Pptvideo/domain"
)

// RunStorePort persists run state transitions so the hosting surface can
// report progress and outcome. Clip payloads never pass through here.
type RunStorePort interface {
	Save(ctx context.Context, record domain.RunRecord) error
	Get(ctx context.Context, runID string) (*domain.RunRecord, error)
}

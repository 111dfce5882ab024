package inbound

import (
	"context"

	"github.com/AnantSoni360/Pptvideo/domain"
)

type StartRunParams struct {
	RunID       string
	DeckPath    string
	AvatarStyle domain.AvatarStyle
	Narration   domain.NarrationSettings
}

type StartRunResponse struct {
	RunID       string
	SlideCount  int
	VideoKey    string
	VideoRegion string
}

// VideoPipelinePort runs one end-to-end conversion: load, synthesize, render,
// assemble, publish. Fail-fast; a failed run produces no output.
type VideoPipelinePort interface {
	StartRun(ctx context.Context, params StartRunParams) (*StartRunResponse, error)
}

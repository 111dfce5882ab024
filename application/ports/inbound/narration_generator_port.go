package inbound

import (
	"context"

	"github.com/AnantSoni360/Pptvideo/domain"
)

// NarrationGeneratorPort fans slide narration synthesis out across the worker
// pool, producing one NarrationClip per slide in completion order.
type NarrationGeneratorPort interface {
	Generate(ctx context.Context, slideCh <-chan domain.Slide, settings domain.NarrationSettings) (<-chan domain.NarrationClip, <-chan error)
}

package inbound

import (
	"context"

	"github.com/AnantSoni360/Pptvideo/domain"
)

// AvatarClipGeneratorPort renders an avatar clip for each narration and
// composites it over the slide card, in completion order.
type AvatarClipGeneratorPort interface {
	Generate(ctx context.Context, narrations <-chan domain.NarrationClip, style domain.AvatarStyle) (<-chan domain.AvatarClip, <-chan error)
}

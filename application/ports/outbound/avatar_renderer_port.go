package outbound

import (
	"context"

	"github.com/AnantSoni360/Pptvideo/domain"
)

type RenderAvatarRequest struct {
	SlideIndex int
	Audio      []byte
	Style      domain.AvatarStyle
}

type RenderAvatarResponse struct {
	// FileName is the local temp file holding the rendered clip.
	FileName string
}

// AvatarRendererPort turns one slide's narration audio into a talking avatar
// clip. Implementations poll the remote job until ready, bounded by the
// configured wait budget.
type AvatarRendererPort interface {
	Render(ctx context.Context, req RenderAvatarRequest) (*RenderAvatarResponse, error)
}

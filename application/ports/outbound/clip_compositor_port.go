package outbound

// ComposeClipRequest pairs a rendered avatar clip with the slide card it is
// overlaid on.
type ComposeClipRequest struct {
	AvatarFileName string
	SlideTitle     string
	SlideIndex     int
}

type ComposeClipResponse struct {
	FileName string
	Duration float64
}

// ClipCompositorPort composites an avatar clip over a slide card, producing
// the final per-slide video segment.
type ClipCompositorPort interface {
	Compose(req ComposeClipRequest) (*ComposeClipResponse, error)
}

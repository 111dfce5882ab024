package outbound

import (
	"github.com/AnantSoni360/Pptvideo/domain"
)

// ConcatenateClipsPort joins the complete, validated set of per-slide clips
// into one output video file and returns its name.
type ConcatenateClipsPort interface {
	Concatenate(clips []domain.AvatarClip, expectedSlides int) (string, error)
}

package outbound

import (
	"github.com/AnantSoni360/Pptvideo/domain"
)

// DeckLoaderPort reads a presentation file and extracts its slides in order.
type DeckLoaderPort interface {
	Load(path string) (*domain.Presentation, error)
}

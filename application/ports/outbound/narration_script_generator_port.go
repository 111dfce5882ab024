package outbound

import "context"

type GenerateNarrationScriptRequest struct {
	SlideTitle string
	SlideText  string
}

// NarrationScriptGeneratorPort streams an expanded spoken explanation of a
// slide's text. Optional stage; when disabled the raw slide text is narrated.
type NarrationScriptGeneratorPort interface {
	Generate(ctx context.Context, req GenerateNarrationScriptRequest) (<-chan string, <-chan error)
}

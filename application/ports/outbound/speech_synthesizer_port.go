package outbound

import "context"

type SynthesizeSpeechRequest struct {
	Text       string
	SlideIndex int
	// Voice, Rate and Pitch override the configured defaults when non-empty.
	Voice string
	Rate  string
	Pitch string
}

// SpeechSynthesizerPort converts one slide's narration text into audio by
// calling the remote speech service. Exactly one call per slide; no retry.
type SpeechSynthesizerPort interface {
	Synthesize(ctx context.Context, req SynthesizeSpeechRequest) ([]byte, error)
}

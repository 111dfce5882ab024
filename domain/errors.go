package domain

import "fmt"

// LoadError means the input file could not be read or is not a valid
// presentation. Terminal and user-visible; never retried.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to load presentation %s: %s", e.Path, e.Reason)
	}
	return "failed to load presentation: " + e.Reason
}

func (e *LoadError) Unwrap() error { return e.Err }

// EmptyContentError means a slide has neither body text nor speaker notes,
// so there is nothing to narrate. Raised before any remote call.
type EmptyContentError struct {
	SlideIndex int
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("slide %d has no text or speaker notes to narrate", e.SlideIndex)
}

// SynthesisError means the speech service failed for one slide.
type SynthesisError struct {
	SlideIndex int
	Reason     string
	Err        error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("narration synthesis failed for slide %d: %s", e.SlideIndex, e.Reason)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// RenderError means the avatar service reported a failure for one slide.
type RenderError struct {
	SlideIndex int
	Reason     string
	Err        error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("avatar rendering failed for slide %d: %s", e.SlideIndex, e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }

// RenderTimeoutError means the avatar render for one slide did not finish
// within the configured wait budget.
type RenderTimeoutError struct {
	SlideIndex int
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("avatar rendering for slide %d exceeded the wait budget", e.SlideIndex)
}

// AssemblyError means the final concatenation could not be produced because a
// clip is missing, corrupt, or of zero duration, or the muxer failed.
type AssemblyError struct {
	Reason string
	Err    error
}

func (e *AssemblyError) Error() string {
	return "video assembly failed: " + e.Reason
}

func (e *AssemblyError) Unwrap() error { return e.Err }

package domain

import "strings"

// Slide is one page of a loaded presentation. Immutable after loading.
type Slide struct {
	Index int
	Title string
	Text  string
	Notes string
}

// NarrationText returns the text the synthesizer should speak for the slide:
// the body text, or the speaker notes when the body is blank.
func (s Slide) NarrationText() string {
	if text := strings.TrimSpace(s.Text); text != "" {
		return text
	}
	return strings.TrimSpace(s.Notes)
}

type Presentation struct {
	Slides []Slide
}

func (p Presentation) SlideCount() int {
	return len(p.Slides)
}

// NarrationClip is the synthesized speech for one slide.
type NarrationClip struct {
	SlideIndex int
	SlideTitle string
	Audio      []byte
	ScriptText string
}

// AvatarClip is the rendered per-slide video, written to a temp file.
type AvatarClip struct {
	SlideIndex int
	FileName   string
	Duration   float64
}

type AvatarClipsAscBySlideIndex []AvatarClip

func (c AvatarClipsAscBySlideIndex) Len() int           { return len(c) }
func (c AvatarClipsAscBySlideIndex) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }
func (c AvatarClipsAscBySlideIndex) Less(i, j int) bool { return c[i].SlideIndex < c[j].SlideIndex }

// NarrationSettings carries per-run voice tuning. Empty fields fall back to
// the configured defaults.
type NarrationSettings struct {
	Voice string
	// Rate and Pitch are prosody adjustments, e.g. "+10%" and "-2Hz".
	Rate  string
	Pitch string
	// ExpandScript asks for a GPT-expanded spoken explanation of each slide
	// instead of verbatim narration.
	ExpandScript bool
}

// AvatarStyle selects one of the presenter presets.
type AvatarStyle string

const (
	ProfessionalAvatarStyle AvatarStyle = "professional"
	CasualAvatarStyle       AvatarStyle = "casual"
	EducationalAvatarStyle  AvatarStyle = "educational"
)

// ParseAvatarStyle maps a request value onto a preset. An empty value selects
// the professional preset; anything else unknown is rejected.
func ParseAvatarStyle(s string) (AvatarStyle, bool) {
	switch AvatarStyle(s) {
	case ProfessionalAvatarStyle, CasualAvatarStyle, EducationalAvatarStyle:
		return AvatarStyle(s), true
	case "":
		return ProfessionalAvatarStyle, true
	}
	return "", false
}

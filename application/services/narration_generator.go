package services

import (
	"context"
	"strings"
	"sync"

	"github.com/AnantSoni360/Pptvideo/application/ports/inbound"
	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type narrationGenerator struct {
	logger          outbound.LoggerPort
	synthesizer     outbound.SpeechSynthesizerPort
	scriptGenerator outbound.NarrationScriptGeneratorPort
	workerPool      outbound.TaskDispatcher
}

// NewNarrationGenerator builds the synthesis stage. scriptGenerator may be
// nil, in which case slides are narrated verbatim.
func NewNarrationGenerator(logger outbound.LoggerPort, synthesizer outbound.SpeechSynthesizerPort,
	scriptGenerator outbound.NarrationScriptGeneratorPort, workerPool outbound.TaskDispatcher) inbound.NarrationGeneratorPort {
	return &narrationGenerator{
		logger:          logger,
		synthesizer:     synthesizer,
		scriptGenerator: scriptGenerator,
		workerPool:      workerPool,
	}
}

// Generate fans per-slide synthesis out on the worker pool. Each slide gets
// exactly one remote call; the first failure cancels the stage and the
// remaining in-flight slides are discarded. The supervisor runs on its own
// goroutine so a full pool can never stall the slide feed: pool workers are
// reserved for the per-slide remote calls.
func (g *narrationGenerator) Generate(ctx context.Context, slideCh <-chan domain.Slide, settings domain.NarrationSettings) (<-chan domain.NarrationClip, <-chan error) {
	out := make(chan domain.NarrationClip)
	errCh := make(chan error, 5)

	newCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(out)
		defer close(errCh)
		defer cancel()

		var wg sync.WaitGroup

		for s := range slideCh {
			select {
			case <-newCtx.Done():
				wg.Wait()
				return
			default:
				slide := s
				wg.Add(1)
				err := g.workerPool.Submit(func() {
					defer wg.Done()

					clip, err := g.synthesizeSlide(newCtx, slide, settings)
					if err != nil {
						select {
						case errCh <- err:
						case <-newCtx.Done():
						}
						cancel()
						return
					}

					select {
					case out <- *clip:
					case <-newCtx.Done():
					}
				})
				if err != nil {
					wg.Done()
					select {
					case errCh <- err:
					case <-newCtx.Done():
					}
					cancel()
					wg.Wait()
					return
				}
			}
		}

		wg.Wait()
	}()

	return out, errCh
}

func (g *narrationGenerator) synthesizeSlide(ctx context.Context, slide domain.Slide, settings domain.NarrationSettings) (*domain.NarrationClip, error) {
	text := strings.TrimSpace(slide.NarrationText())
	if text == "" {
		return nil, &domain.EmptyContentError{SlideIndex: slide.Index}
	}

	if settings.ExpandScript && g.scriptGenerator != nil {
		script, err := g.expandScript(ctx, slide)
		if err != nil {
			return nil, &domain.SynthesisError{SlideIndex: slide.Index, Reason: "failed to generate narration script", Err: err}
		}
		if strings.TrimSpace(script) != "" {
			text = script
		}
	}

	audio, err := g.synthesizer.Synthesize(ctx, outbound.SynthesizeSpeechRequest{
		Text:       text,
		SlideIndex: slide.Index,
		Voice:      settings.Voice,
		Rate:       settings.Rate,
		Pitch:      settings.Pitch,
	})
	if err != nil {
		return nil, err
	}

	g.logger.DebugWithFields("narration synthesized", map[string]interface{}{
		"slide_index": slide.Index,
		"audio_bytes": len(audio),
	})

	return &domain.NarrationClip{
		SlideIndex: slide.Index,
		SlideTitle: slide.Title,
		Audio:      audio,
		ScriptText: text,
	}, nil
}

// expandScript drains the streaming explanation into one script string.
func (g *narrationGenerator) expandScript(ctx context.Context, slide domain.Slide) (string, error) {
	tokenCh, errCh := g.scriptGenerator.Generate(ctx, outbound.GenerateNarrationScriptRequest{
		SlideTitle: slide.Title,
		SlideText:  slide.NarrationText(),
	})

	var builder strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err, ok := <-errCh:
			if ok && err != nil {
				return "", err
			}
			if !ok {
				errCh = nil
			}
		case token, ok := <-tokenCh:
			if !ok {
				return builder.String(), nil
			}
			builder.WriteString(token)
		}
	}
}

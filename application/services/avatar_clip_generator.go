package services

import (
	"context"
	"os"
	"sync"

	"github.com/AnantSoni360/Pptvideo/application/ports/inbound"
	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type avatarClipGenerator struct {
	logger     outbound.LoggerPort
	renderer   outbound.AvatarRendererPort
	compositor outbound.ClipCompositorPort
	workerPool outbound.TaskDispatcher
}

func NewAvatarClipGenerator(logger outbound.LoggerPort, renderer outbound.AvatarRendererPort,
	compositor outbound.ClipCompositorPort, workerPool outbound.TaskDispatcher) inbound.AvatarClipGeneratorPort {
	return &avatarClipGenerator{
		logger:     logger,
		renderer:   renderer,
		compositor: compositor,
		workerPool: workerPool,
	}
}

// Generate renders an avatar clip for each narration and composites it over
// the slide card, fanning out per slide. Completion order is arbitrary; the
// assembler reorders by slide index. The supervisor runs on its own goroutine
// so pool workers stay reserved for per-slide render calls.
func (g *avatarClipGenerator) Generate(ctx context.Context, narrations <-chan domain.NarrationClip, style domain.AvatarStyle) (<-chan domain.AvatarClip, <-chan error) {
	out := make(chan domain.AvatarClip)
	errCh := make(chan error, 5)

	newCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(out)
		defer close(errCh)
		defer cancel()

		var wg sync.WaitGroup

		for n := range narrations {
			select {
			case <-newCtx.Done():
				wg.Wait()
				return
			default:
				narration := n
				wg.Add(1)
				err := g.workerPool.Submit(func() {
					defer wg.Done()

					clip, err := g.renderSlideClip(newCtx, narration, style)
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
						// The stage failed before this clip was collected, so
						// nothing downstream will delete its file.
						g.removeClipFile(clip.FileName)
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

func (g *avatarClipGenerator) removeClipFile(fileName string) {
	if err := os.Remove(fileName); err != nil && !os.IsNotExist(err) {
		g.logger.Error(err, "error removing discarded slide clip")
	}
}

func (g *avatarClipGenerator) renderSlideClip(ctx context.Context, narration domain.NarrationClip, style domain.AvatarStyle) (*domain.AvatarClip, error) {
	renderRes, err := g.renderer.Render(ctx, outbound.RenderAvatarRequest{
		SlideIndex: narration.SlideIndex,
		Audio:      narration.Audio,
		Style:      style,
	})
	if err != nil {
		return nil, err
	}

	composeRes, err := g.compositor.Compose(outbound.ComposeClipRequest{
		AvatarFileName: renderRes.FileName,
		SlideTitle:     narration.SlideTitle,
		SlideIndex:     narration.SlideIndex,
	})
	if err != nil {
		return nil, &domain.RenderError{SlideIndex: narration.SlideIndex, Reason: "failed to composite slide clip", Err: err}
	}

	g.logger.DebugWithFields("avatar clip composed", map[string]interface{}{
		"slide_index": narration.SlideIndex,
		"duration":    composeRes.Duration,
	})

	return &domain.AvatarClip{
		SlideIndex: narration.SlideIndex,
		FileName:   composeRes.FileName,
		Duration:   composeRes.Duration,
	}, nil
}

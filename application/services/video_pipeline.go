package services

import (
	"context"
	"os"

	"github.com/AnantSoni360/Pptvideo/application/ports/inbound"
	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/channel_utils"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type videoPipeline struct {
	logger          outbound.LoggerPort
	deckLoader      outbound.DeckLoaderPort
	narrationStage  inbound.NarrationGeneratorPort
	avatarClipStage inbound.AvatarClipGeneratorPort
	concatenator    outbound.ConcatenateClipsPort
	videoPublisher  outbound.VideoPublisherPort
	runStore        outbound.RunStorePort
}

func NewVideoPipeline(
	logger outbound.LoggerPort,
	deckLoader outbound.DeckLoaderPort,
	narrationStage inbound.NarrationGeneratorPort,
	avatarClipStage inbound.AvatarClipGeneratorPort,
	concatenator outbound.ConcatenateClipsPort,
	videoPublisher outbound.VideoPublisherPort,
	runStore outbound.RunStorePort) inbound.VideoPipelinePort {
	return &videoPipeline{
		logger:          logger,
		deckLoader:      deckLoader,
		narrationStage:  narrationStage,
		avatarClipStage: avatarClipStage,
		concatenator:    concatenator,
		videoPublisher:  videoPublisher,
		runStore:        runStore,
	}
}

// StartRun executes one conversion end to end. Any stage error cancels the
// whole run, discards per-slide results already produced, and leaves no
// output behind.
func (p *videoPipeline) StartRun(ctx context.Context, params inbound.StartRunParams) (*inbound.StartRunResponse, error) {
	newCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	presentation, err := p.deckLoader.Load(params.DeckPath)
	if err != nil {
		p.logger.Error(err, "error loading presentation")
		p.recordState(ctx, params, 0, domain.RunFailed, "", "", err.Error())
		return nil, err
	}

	slideCount := presentation.SlideCount()
	p.recordState(newCtx, params, slideCount, domain.RunLoaded, "", "", "")

	slideCh := p.feedSlides(newCtx, presentation.Slides)

	narrationCh, narrationErrCh := p.narrationStage.Generate(newCtx, slideCh, params.Narration)
	p.recordState(newCtx, params, slideCount, domain.RunSynthesizing, "", "", "")

	clipCh, clipErrCh := p.avatarClipStage.Generate(newCtx, narrationCh, params.AvatarStyle)

	mergedErrCh := channel_utils.MergeChannels(narrationErrCh, clipErrCh)

	p.recordState(newCtx, params, slideCount, domain.RunRendering, "", "", "")

	clips, err := p.collectClips(newCtx, clipCh, mergedErrCh)
	if err != nil {
		p.logger.Error(err, "error collecting avatar clips")
		cancel()
		p.discardClips(clips)
		p.recordState(ctx, params, slideCount, domain.RunFailed, "", "", err.Error())
		return nil, err
	}

	p.recordState(newCtx, params, slideCount, domain.RunAssembling, "", "", "")

	outputFileName, err := p.concatenator.Concatenate(clips, slideCount)
	if err != nil {
		p.logger.Error(err, "error assembling output video")
		p.discardClips(clips)
		p.recordState(ctx, params, slideCount, domain.RunFailed, "", "", err.Error())
		return nil, err
	}

	publishRes, err := p.videoPublisher.Publish(newCtx, outbound.PublishVideoRequest{
		VideoFileName: outputFileName,
		RunID:         params.RunID,
	})
	if err != nil {
		p.logger.Error(err, "error publishing output video")
		p.removeFile(outputFileName)
		p.recordState(ctx, params, slideCount, domain.RunFailed, "", "", err.Error())
		return nil, err
	}

	p.recordState(ctx, params, slideCount, domain.RunComplete, publishRes.VideoKey, publishRes.StoreRegion, "")

	return &inbound.StartRunResponse{
		RunID:       params.RunID,
		SlideCount:  slideCount,
		VideoKey:    publishRes.VideoKey,
		VideoRegion: publishRes.StoreRegion,
	}, nil
}

func (p *videoPipeline) feedSlides(ctx context.Context, slides []domain.Slide) <-chan domain.Slide {
	out := make(chan domain.Slide)
	go func() {
		defer close(out)
		for _, slide := range slides {
			select {
			case out <- slide:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// collectClips is the synchronization point: it blocks until every slide's
// clip has arrived or the first error surfaces, whichever comes first.
func (p *videoPipeline) collectClips(ctx context.Context, clipCh <-chan domain.AvatarClip, errCh <-chan error) ([]domain.AvatarClip, error) {
	clips := make([]domain.AvatarClip, 0)
	for {
		select {
		case err, ok := <-errCh:
			if ok && err != nil {
				return clips, err
			}
			if !ok {
				errCh = nil
			}
		case <-ctx.Done():
			return clips, ctx.Err()
		case clip, ok := <-clipCh:
			if !ok {
				// The stages close their error channels after their output
				// channels, so drain errCh to pick up an error that raced
				// the close.
				if errCh != nil {
					for err := range errCh {
						if err != nil {
							return clips, err
						}
					}
				}
				return clips, nil
			}
			clips = append(clips, clip)
		}
	}
}

// discardClips removes per-slide temp files from a doomed run so no partial
// output survives.
func (p *videoPipeline) discardClips(clips []domain.AvatarClip) {
	for _, clip := range clips {
		p.removeFile(clip.FileName)
	}
}

func (p *videoPipeline) removeFile(fileName string) {
	if fileName == "" {
		return
	}
	err := os.Remove(fileName)
	if err != nil && !os.IsNotExist(err) {
		p.logger.Error(err, "error removing temp file")
	}
}

// recordState persists a run transition. Progress reporting is ancillary, so
// a store failure is logged without failing an otherwise healthy run.
func (p *videoPipeline) recordState(ctx context.Context, params inbound.StartRunParams, slideCount int,
	state domain.RunState, videoKey string, videoRegion string, failReason string) {
	err := p.runStore.Save(ctx, domain.RunRecord{
		RunID:       params.RunID,
		State:       state,
		SlideCount:  slideCount,
		VideoKey:    videoKey,
		VideoRegion: videoRegion,
		FailReason:  failReason,
	})
	if err != nil {
		p.logger.ErrorWithFields(err, "error recording run state", map[string]interface{}{
			"run_id": params.RunID,
			"state":  state,
		})
	}
}

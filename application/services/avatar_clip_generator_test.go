package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type fakeRenderer struct {
	mu        sync.Mutex
	styles    []domain.AvatarStyle
	failIndex int
	delays    map[int]time.Duration
	// sleeps holds the render past cancellation, like a remote call that has
	// already gone over the wire.
	sleeps map[int]time.Duration
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{failIndex: -1}
}

func (f *fakeRenderer) Render(ctx context.Context, req outbound.RenderAvatarRequest) (*outbound.RenderAvatarResponse, error) {
	f.mu.Lock()
	f.styles = append(f.styles, req.Style)
	delay := f.delays[req.SlideIndex]
	sleep := f.sleeps[req.SlideIndex]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if sleep > 0 {
		time.Sleep(sleep)
	}

	if req.SlideIndex == f.failIndex {
		return nil, &domain.RenderError{SlideIndex: req.SlideIndex, Reason: "avatar service rejected the request"}
	}

	return &outbound.RenderAvatarResponse{FileName: fmt.Sprintf("avatar-%d.mp4", req.SlideIndex)}, nil
}

type fakeCompositor struct {
	failIndex int
	// When dir is set, composed clips are written as real files there.
	dir string
}

func (f *fakeCompositor) Compose(req outbound.ComposeClipRequest) (*outbound.ComposeClipResponse, error) {
	if req.SlideIndex == f.failIndex {
		return nil, errors.New("ffmpeg exited with status 1")
	}
	fileName := fmt.Sprintf("clip-%d.mp4", req.SlideIndex)
	if f.dir != "" {
		fileName = filepath.Join(f.dir, fileName)
		if err := os.WriteFile(fileName, []byte("clip"), 0o644); err != nil {
			return nil, err
		}
	}
	return &outbound.ComposeClipResponse{
		FileName: fileName,
		Duration: 2.5,
	}, nil
}

func feedNarrations(narrations []domain.NarrationClip) <-chan domain.NarrationClip {
	out := make(chan domain.NarrationClip)
	go func() {
		defer close(out)
		for _, n := range narrations {
			out <- n
		}
	}()
	return out
}

func collectAvatarClips(t *testing.T, clipCh <-chan domain.AvatarClip, errCh <-chan error) ([]domain.AvatarClip, error) {
	t.Helper()
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
		case clip, ok := <-clipCh:
			if !ok {
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
		case <-time.After(5 * time.Second):
			t.Fatal("Timed out waiting for avatar stage")
		}
	}
}

func TestAvatarClipGenerator_Generate(t *testing.T) {
	renderer := newFakeRenderer()
	// First slide finishes last so completion order differs from slide order.
	renderer.delays = map[int]time.Duration{0: 100 * time.Millisecond}
	compositor := &fakeCompositor{failIndex: -1}
	generator := NewAvatarClipGenerator(testLogger(), renderer, compositor, testPool(t))

	narrations := []domain.NarrationClip{
		{SlideIndex: 0, SlideTitle: "Intro", Audio: []byte("a")},
		{SlideIndex: 1, SlideTitle: "Middle", Audio: []byte("b")},
		{SlideIndex: 2, SlideTitle: "End", Audio: []byte("c")},
	}

	clipCh, errCh := generator.Generate(context.Background(), feedNarrations(narrations), domain.CasualAvatarStyle)

	clips, err := collectAvatarClips(t, clipCh, errCh)
	if err != nil {
		t.Fatal("Unexpected stage error:", err)
	}
	if len(clips) != 3 {
		t.Fatalf("Expected 3 avatar clips, got %d", len(clips))
	}

	seen := make(map[int]bool)
	for _, clip := range clips {
		seen[clip.SlideIndex] = true
		if clip.FileName == "" {
			t.Fatalf("Missing file name for slide %d", clip.SlideIndex)
		}
		if clip.Duration <= 0 {
			t.Fatalf("Expected positive duration for slide %d", clip.SlideIndex)
		}
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Fatalf("Missing clip for slide %d", i)
		}
	}

	for _, style := range renderer.styles {
		if style != domain.CasualAvatarStyle {
			t.Fatalf("Expected style %q forwarded to renderer, got %q", domain.CasualAvatarStyle, style)
		}
	}
}

func TestAvatarClipGenerator_RenderFailure(t *testing.T) {
	renderer := newFakeRenderer()
	renderer.failIndex = 1
	compositor := &fakeCompositor{failIndex: -1}
	generator := NewAvatarClipGenerator(testLogger(), renderer, compositor, testPool(t))

	narrations := []domain.NarrationClip{
		{SlideIndex: 0, Audio: []byte("a")},
		{SlideIndex: 1, Audio: []byte("b")},
	}

	clipCh, errCh := generator.Generate(context.Background(), feedNarrations(narrations), domain.ProfessionalAvatarStyle)

	_, err := collectAvatarClips(t, clipCh, errCh)
	var renderErr *domain.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Expected RenderError, got %v", err)
	}
	if renderErr.SlideIndex != 1 {
		t.Fatalf("Expected failing slide index 1, got %d", renderErr.SlideIndex)
	}
}

func TestAvatarClipGenerator_FailureDiscardsLateClips(t *testing.T) {
	// Slide 1 fails immediately while slide 0 is still rendering. The late
	// clip finishes after the stage has been cancelled and must not leave its
	// file behind.
	dir := t.TempDir()
	renderer := newFakeRenderer()
	renderer.failIndex = 1
	renderer.sleeps = map[int]time.Duration{0: 150 * time.Millisecond}
	compositor := &fakeCompositor{failIndex: -1, dir: dir}
	generator := NewAvatarClipGenerator(testLogger(), renderer, compositor, testPool(t))

	narrations := []domain.NarrationClip{
		{SlideIndex: 0, Audio: []byte("a")},
		{SlideIndex: 1, Audio: []byte("b")},
	}

	_, errCh := generator.Generate(context.Background(), feedNarrations(narrations), domain.ProfessionalAvatarStyle)

	// Read errors only, like the run does after its first failure. The error
	// channel closes once every in-flight slide has finished.
	var stageErr error
	deadline := time.After(5 * time.Second)
	for errCh != nil {
		select {
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				break
			}
			if err != nil && stageErr == nil {
				stageErr = err
			}
		case <-deadline:
			t.Fatal("Timed out waiting for the avatar stage to drain")
		}
	}

	var renderErr *domain.RenderError
	if !errors.As(stageErr, &renderErr) {
		t.Fatalf("Expected RenderError, got %v", stageErr)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.mp4"))
	if err != nil {
		t.Fatal("Failed to scan work dir:", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("Expected no clip files after a failed run, found %v", leftovers)
	}
}

func TestAvatarClipGenerator_ComposeFailure(t *testing.T) {
	renderer := newFakeRenderer()
	compositor := &fakeCompositor{failIndex: 0}
	generator := NewAvatarClipGenerator(testLogger(), renderer, compositor, testPool(t))

	narrations := []domain.NarrationClip{{SlideIndex: 0, Audio: []byte("a")}}

	clipCh, errCh := generator.Generate(context.Background(), feedNarrations(narrations), domain.ProfessionalAvatarStyle)

	_, err := collectAvatarClips(t, clipCh, errCh)
	var renderErr *domain.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Expected RenderError wrapping the compositor failure, got %v", err)
	}
}

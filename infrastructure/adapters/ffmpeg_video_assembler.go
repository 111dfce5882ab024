package adapters

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type ffmpegVideoAssembler struct {
	logger  outbound.LoggerPort
	workDir string
}

func NewFFmpegVideoAssembler(workDir string, logger outbound.LoggerPort) outbound.ConcatenateClipsPort {
	return &ffmpegVideoAssembler{
		logger:  logger,
		workDir: workDir,
	}
}

// Concatenate validates the clip set, sorts it into slide-index order, and
// joins it with the concat demuxer. Clips are validated before ffmpeg runs so
// a missing or empty clip fails cleanly instead of producing a broken video.
func (f *ffmpegVideoAssembler) Concatenate(clips []domain.AvatarClip, expectedSlides int) (string, error) {
	if err := f.validateClips(clips, expectedSlides); err != nil {
		return "", err
	}

	sort.Sort(domain.AvatarClipsAscBySlideIndex(clips))

	listFileName, err := f.writeClipList(clips)
	if err != nil {
		return "", &domain.AssemblyError{Reason: "failed to stage clip list", Err: err}
	}
	defer func() {
		err := os.Remove(listFileName)
		if err != nil {
			f.logger.Error(err, "Failed to remove clip list file")
		}
	}()

	finalFileName := filepath.Join(f.workDir, uuid.NewString()+".mp4")
	cmd := exec.Command("ffmpeg", "-f", "concat", "-safe", "0", "-i", listFileName, "-c", "copy", finalFileName)
	if err := cmd.Run(); err != nil {
		f.logger.Error(err, "Failed to concatenate clips")
		return "", &domain.AssemblyError{Reason: "clip concatenation failed", Err: err}
	}

	for _, clip := range clips {
		err := os.Remove(clip.FileName)
		if err != nil {
			f.logger.Error(err, "Failed to remove per-slide clip file")
		}
	}

	return finalFileName, nil
}

// validateClips enforces the index-set invariant: every slide 0..N-1 present
// exactly once, each backed by a non-empty file of positive duration.
func (f *ffmpegVideoAssembler) validateClips(clips []domain.AvatarClip, expectedSlides int) error {
	if len(clips) != expectedSlides {
		return &domain.AssemblyError{Reason: fmt.Sprintf("expected %d clips, got %d", expectedSlides, len(clips))}
	}

	seen := make(map[int]bool, len(clips))
	for _, clip := range clips {
		if clip.SlideIndex < 0 || clip.SlideIndex >= expectedSlides {
			return &domain.AssemblyError{Reason: fmt.Sprintf("clip has out-of-range slide index %d", clip.SlideIndex)}
		}
		if seen[clip.SlideIndex] {
			return &domain.AssemblyError{Reason: fmt.Sprintf("duplicate clip for slide %d", clip.SlideIndex)}
		}
		seen[clip.SlideIndex] = true

		if clip.Duration <= 0 {
			return &domain.AssemblyError{Reason: fmt.Sprintf("clip for slide %d has zero duration", clip.SlideIndex)}
		}
		info, err := os.Stat(clip.FileName)
		if err != nil {
			return &domain.AssemblyError{Reason: fmt.Sprintf("clip file for slide %d is missing", clip.SlideIndex), Err: err}
		}
		if info.Size() == 0 {
			return &domain.AssemblyError{Reason: fmt.Sprintf("clip file for slide %d is empty", clip.SlideIndex)}
		}
	}

	return nil
}

func (f *ffmpegVideoAssembler) writeClipList(clips []domain.AvatarClip) (string, error) {
	fileList, err := os.Create(filepath.Join(f.workDir, uuid.NewString()+".txt"))
	if err != nil {
		return "", err
	}
	defer func() {
		err := fileList.Close()
		if err != nil {
			f.logger.Error(err, "Failed to close clip list file")
		}
	}()

	writer := bufio.NewWriter(fileList)
	for _, clip := range clips {
		if _, err = writer.WriteString("file '" + clip.FileName + "'\n"); err != nil {
			return "", err
		}
	}
	if err = writer.Flush(); err != nil {
		return "", err
	}

	return fileList.Name(), nil
}

package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/domain"
)

// Background colors per preset, matching the styled cards the original
// offline mode produced.
var simpleAvatarColors = map[domain.AvatarStyle]string{
	domain.ProfessionalAvatarStyle: "0x2C3E50",
	domain.CasualAvatarStyle:       "0x2ECC71",
	domain.EducationalAvatarStyle:  "0x2980B9",
}

type simpleAvatarRenderer struct {
	logger  outbound.LoggerPort
	workDir string
}

// NewSimpleAvatarRenderer is the offline fallback used when no avatar service
// key is configured: a styled color card carrying the narration audio.
func NewSimpleAvatarRenderer(workDir string, logger outbound.LoggerPort) outbound.AvatarRendererPort {
	return &simpleAvatarRenderer{
		logger:  logger,
		workDir: workDir,
	}
}

func (r *simpleAvatarRenderer) Render(ctx context.Context, renderReq outbound.RenderAvatarRequest) (*outbound.RenderAvatarResponse, error) {
	color, ok := simpleAvatarColors[renderReq.Style]
	if !ok {
		color = simpleAvatarColors[domain.ProfessionalAvatarStyle]
	}

	audioFileName := filepath.Join(r.workDir, uuid.NewString()+".mp3")
	if err := os.WriteFile(audioFileName, renderReq.Audio, 0o644); err != nil {
		return nil, &domain.RenderError{SlideIndex: renderReq.SlideIndex, Reason: "failed to stage narration audio", Err: err}
	}
	defer func() {
		err := os.Remove(audioFileName)
		if err != nil {
			r.logger.Error(err, "error removing staged audio file")
		}
	}()

	outputFile := filepath.Join(r.workDir, uuid.NewString()+".mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=%s:s=640x480:r=24", color),
		"-i", audioFileName,
		"-c:v", "libx264", "-tune", "stillimage",
		"-c:a", "aac", "-b:a", "192k",
		"-pix_fmt", "yuv420p", "-shortest", outputFile)
	if err := cmd.Run(); err != nil {
		r.logger.ErrorWithFields(err, "error rendering simple avatar card", map[string]interface{}{
			"slide_index": renderReq.SlideIndex,
		})
		return nil, &domain.RenderError{SlideIndex: renderReq.SlideIndex, Reason: "failed to render avatar card", Err: err}
	}

	return &outbound.RenderAvatarResponse{FileName: outputFile}, nil
}

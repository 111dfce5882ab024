package adapters

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
)

type ffmpegClipCompositor struct {
	logger  outbound.LoggerPort
	workDir string
}

func NewFFmpegClipCompositor(workDir string, logger outbound.LoggerPort) outbound.ClipCompositorPort {
	return &ffmpegClipCompositor{
		logger:  logger,
		workDir: workDir,
	}
}

// Compose overlays the avatar clip onto a slide card: white 720p background,
// the slide title drawn top-left, the avatar scaled down and pinned to the
// top-right corner. Audio comes from the avatar clip.
func (c *ffmpegClipCompositor) Compose(req outbound.ComposeClipRequest) (*outbound.ComposeClipResponse, error) {
	defer func() {
		err := os.Remove(req.AvatarFileName)
		if err != nil {
			c.logger.Error(err, "error removing avatar clip file")
		}
	}()

	outputFile := filepath.Join(c.workDir, uuid.NewString()+".mp4")

	filter := "[1:v]scale=320:-2[avatar];" +
		"[0:v]drawtext=text='" + escapeDrawtext(req.SlideTitle) + "':fontcolor=black:fontsize=48:x=80:y=80[card];" +
		"[card][avatar]overlay=W-w-50:50[v]"

	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "color=c=white:s=1280x720:r=24",
		"-i", req.AvatarFileName,
		"-filter_complex", filter,
		"-map", "[v]", "-map", "1:a",
		"-c:v", "libx264", "-c:a", "aac", "-b:a", "192k",
		"-pix_fmt", "yuv420p", "-shortest", outputFile)
	if err := cmd.Run(); err != nil {
		c.logger.ErrorWithFields(err, "error compositing slide clip", map[string]interface{}{
			"slide_index": req.SlideIndex,
		})
		return nil, err
	}

	duration, err := c.getVideoDuration(outputFile)
	if err != nil {
		c.logger.Error(err, "error getting composed clip duration")
		return nil, err
	}

	return &outbound.ComposeClipResponse{
		FileName: outputFile,
		Duration: duration,
	}, nil
}

func (c *ffmpegClipCompositor) getVideoDuration(filePath string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath)

	out, err := cmd.Output()
	if err != nil {
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse clip duration: %w", err)
	}

	return duration, nil
}

// escapeDrawtext keeps slide titles from breaking the ffmpeg filter syntax.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return replacer.Replace(text)
}

package adapters

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnantSoni360/Pptvideo/domain"
)

func stageClipFile(t *testing.T, dir string, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("clip-bytes"), 0o644); err != nil {
		t.Fatal("Failed to stage clip file:", err)
	}
	return path
}

func assemblyReason(t *testing.T, err error) string {
	t.Helper()
	var assemblyErr *domain.AssemblyError
	if !errors.As(err, &assemblyErr) {
		t.Fatalf("Expected AssemblyError, got %v", err)
	}
	return assemblyErr.Reason
}

func TestVideoAssembler_RejectsIncompleteClipSet(t *testing.T) {
	dir := t.TempDir()
	assembler := NewFFmpegVideoAssembler(dir, NewZerologWrapper())

	clips := []domain.AvatarClip{
		{SlideIndex: 0, FileName: stageClipFile(t, dir, "clip-0.mp4"), Duration: 2},
		{SlideIndex: 1, FileName: stageClipFile(t, dir, "clip-1.mp4"), Duration: 2},
	}

	_, err := assembler.Concatenate(clips, 3)
	if reason := assemblyReason(t, err); !strings.Contains(reason, "expected 3 clips") {
		t.Fatalf("Unexpected failure reason %q", reason)
	}
}

func TestVideoAssembler_RejectsDuplicateSlideIndex(t *testing.T) {
	dir := t.TempDir()
	assembler := NewFFmpegVideoAssembler(dir, NewZerologWrapper())

	clips := []domain.AvatarClip{
		{SlideIndex: 0, FileName: stageClipFile(t, dir, "clip-0.mp4"), Duration: 2},
		{SlideIndex: 0, FileName: stageClipFile(t, dir, "clip-0b.mp4"), Duration: 2},
	}

	_, err := assembler.Concatenate(clips, 2)
	if reason := assemblyReason(t, err); !strings.Contains(reason, "duplicate clip") {
		t.Fatalf("Unexpected failure reason %q", reason)
	}
}

func TestVideoAssembler_RejectsOutOfRangeSlideIndex(t *testing.T) {
	dir := t.TempDir()
	assembler := NewFFmpegVideoAssembler(dir, NewZerologWrapper())

	clips := []domain.AvatarClip{
		{SlideIndex: 5, FileName: stageClipFile(t, dir, "clip-5.mp4"), Duration: 2},
	}

	_, err := assembler.Concatenate(clips, 1)
	if reason := assemblyReason(t, err); !strings.Contains(reason, "out-of-range") {
		t.Fatalf("Unexpected failure reason %q", reason)
	}
}

func TestVideoAssembler_RejectsZeroDurationClip(t *testing.T) {
	dir := t.TempDir()
	assembler := NewFFmpegVideoAssembler(dir, NewZerologWrapper())

	clips := []domain.AvatarClip{
		{SlideIndex: 0, FileName: stageClipFile(t, dir, "clip-0.mp4")},
	}

	_, err := assembler.Concatenate(clips, 1)
	if reason := assemblyReason(t, err); !strings.Contains(reason, "zero duration") {
		t.Fatalf("Unexpected failure reason %q", reason)
	}
}

func TestVideoAssembler_RejectsMissingClipFile(t *testing.T) {
	dir := t.TempDir()
	assembler := NewFFmpegVideoAssembler(dir, NewZerologWrapper())

	clips := []domain.AvatarClip{
		{SlideIndex: 0, FileName: filepath.Join(dir, "never-written.mp4"), Duration: 2},
	}

	_, err := assembler.Concatenate(clips, 1)
	if reason := assemblyReason(t, err); !strings.Contains(reason, "missing") {
		t.Fatalf("Unexpected failure reason %q", reason)
	}
}

func TestVideoAssembler_RejectsEmptyClipFile(t *testing.T) {
	dir := t.TempDir()
	assembler := NewFFmpegVideoAssembler(dir, NewZerologWrapper())

	path := filepath.Join(dir, "empty.mp4")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal("Failed to stage empty clip file:", err)
	}
	clips := []domain.AvatarClip{{SlideIndex: 0, FileName: path, Duration: 2}}

	_, err := assembler.Concatenate(clips, 1)
	if reason := assemblyReason(t, err); !strings.Contains(reason, "empty") {
		t.Fatalf("Unexpected failure reason %q", reason)
	}
}

package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/config"
	"github.com/AnantSoni360/Pptvideo/domain"
)

func testAvatarConfig(apiUrl string) *config.AvatarConfig {
	return &config.AvatarConfig{
		ApiUrl:       apiUrl,
		ApiKey:       "test-key",
		PollInterval: 10 * time.Millisecond,
		WaitBudget:   500 * time.Millisecond,
	}
}

func TestDIDAvatarRenderer_Render(t *testing.T) {
	var polls int32

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/audios", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Error("Expected multipart audio upload:", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": server.URL + "/uploaded/narration.mp3"})
	})
	mux.HandleFunc("/talks", func(w http.ResponseWriter, r *http.Request) {
		var talkReq didCreateTalkRequest
		if err := json.NewDecoder(r.Body).Decode(&talkReq); err != nil {
			t.Error("Failed to decode talk request:", err)
		}
		if talkReq.Script.Type != "audio" {
			t.Errorf("Expected audio script, got %s", talkReq.Script.Type)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "talk-1"})
	})
	mux.HandleFunc("/talks/talk-1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 3 {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "started"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "done", "result_url": server.URL + "/result.mp4"})
	})
	mux.HandleFunc("/result.mp4", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("clip-bytes"))
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	logger := NewZerologWrapper()
	renderer := NewDIDAvatarRenderer(NewContentFetcher(logger), testAvatarConfig(server.URL), t.TempDir(), logger)

	res, err := renderer.Render(context.Background(), outbound.RenderAvatarRequest{
		SlideIndex: 0,
		Audio:      []byte("audio-bytes"),
		Style:      domain.ProfessionalAvatarStyle,
	})
	if err != nil {
		t.Fatal("Failed to render avatar:", err)
	}

	payload, err := os.ReadFile(res.FileName)
	if err != nil {
		t.Fatal("Failed to read downloaded clip:", err)
	}
	if string(payload) != "clip-bytes" {
		t.Fatalf("Unexpected clip payload: %q", payload)
	}

	if atomic.LoadInt32(&polls) < 3 {
		t.Fatalf("Expected at least 3 polls, got %d", polls)
	}
}

func TestDIDAvatarRenderer_Timeout(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/audios", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": server.URL + "/uploaded/narration.mp3"})
	})
	mux.HandleFunc("/talks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "talk-1"})
	})
	mux.HandleFunc("/talks/talk-1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "started"})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	avatarConfig := testAvatarConfig(server.URL)
	avatarConfig.WaitBudget = 50 * time.Millisecond

	logger := NewZerologWrapper()
	renderer := NewDIDAvatarRenderer(NewContentFetcher(logger), avatarConfig, t.TempDir(), logger)

	_, err := renderer.Render(context.Background(), outbound.RenderAvatarRequest{
		SlideIndex: 2,
		Audio:      []byte("audio-bytes"),
		Style:      domain.CasualAvatarStyle,
	})

	var timeoutErr *domain.RenderTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected RenderTimeoutError, got %v", err)
	}
	if timeoutErr.SlideIndex != 2 {
		t.Fatalf("Expected failing slide index 2, got %d", timeoutErr.SlideIndex)
	}
}

func TestDIDAvatarRenderer_TimeoutCutsHungPoll(t *testing.T) {
	// A status poll that never answers must be cut off by the wait budget,
	// not ride it out.
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/audios", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": server.URL + "/uploaded/narration.mp3"})
	})
	mux.HandleFunc("/talks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "talk-1"})
	})
	mux.HandleFunc("/talks/talk-1", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	avatarConfig := testAvatarConfig(server.URL)
	avatarConfig.WaitBudget = 100 * time.Millisecond

	logger := NewZerologWrapper()
	renderer := NewDIDAvatarRenderer(NewContentFetcher(logger), avatarConfig, t.TempDir(), logger)

	start := time.Now()
	_, err := renderer.Render(context.Background(), outbound.RenderAvatarRequest{
		SlideIndex: 3,
		Audio:      []byte("audio-bytes"),
		Style:      domain.ProfessionalAvatarStyle,
	})
	elapsed := time.Since(start)

	var timeoutErr *domain.RenderTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected RenderTimeoutError, got %v", err)
	}
	if timeoutErr.SlideIndex != 3 {
		t.Fatalf("Expected failing slide index 3, got %d", timeoutErr.SlideIndex)
	}
	if elapsed > time.Second {
		t.Fatalf("Render outlived the wait budget, took %v", elapsed)
	}
}

func TestDIDAvatarRenderer_RemoteRejection(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/audios", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": server.URL + "/uploaded/narration.mp3"})
	})
	mux.HandleFunc("/talks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "talk-1"})
	})
	mux.HandleFunc("/talks/talk-1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": "unusable audio"})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	logger := NewZerologWrapper()
	renderer := NewDIDAvatarRenderer(NewContentFetcher(logger), testAvatarConfig(server.URL), t.TempDir(), logger)

	_, err := renderer.Render(context.Background(), outbound.RenderAvatarRequest{
		SlideIndex: 1,
		Audio:      []byte("audio-bytes"),
		Style:      domain.EducationalAvatarStyle,
	})

	var renderErr *domain.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Expected RenderError, got %v", err)
	}
}

package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/config"
)

func streamTestServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", chunk)
			flusher.Flush()
		}
	}))
}

func collectScript(t *testing.T, out <-chan string, errCh <-chan error) string {
	t.Helper()
	var builder strings.Builder
	for {
		select {
		case err, ok := <-errCh:
			if ok && err != nil {
				t.Fatal("Unexpected stream error:", err)
			}
			if !ok {
				errCh = nil
			}
		case token, ok := <-out:
			if !ok {
				return builder.String()
			}
			builder.WriteString(token)
		case <-time.After(5 * time.Second):
			t.Fatal("Timed out waiting for the explanation stream")
		}
	}
}

func TestGptScriptGenerator_Generate(t *testing.T) {
	server := streamTestServer(t, []string{
		`{"choices":[{"index":0,"delta":{"content":"This slide "}}]}`,
		`{"choices":[{"index":0,"delta":{"content":"covers the basics."}}]}`,
		DoneSignal,
	})
	defer server.Close()

	generator := NewGptScriptGenerator(&config.GptConfig{
		ApiUrl: server.URL,
		ApiKey: "test-key",
		Model:  "gpt-4o-mini",
	}, NewZerologWrapper())

	out, errCh := generator.Generate(context.Background(), outbound.GenerateNarrationScriptRequest{
		SlideTitle: "Basics",
		SlideText:  "Some bullets",
	})

	script := collectScript(t, out, errCh)
	if script != "This slide covers the basics." {
		t.Fatalf("Unexpected script %q", script)
	}
}

func TestGptScriptGenerator_SkipsEmptyChoiceChunks(t *testing.T) {
	// The stream interleaves housekeeping chunks whose choices array is
	// empty; those must be skipped without losing the rest of the script.
	server := streamTestServer(t, []string{
		`{"choices":[]}`,
		`{"choices":[{"index":0,"delta":{"content":"A full "}}]}`,
		`{"choices":[]}`,
		`{"choices":[{"index":0,"delta":{"content":"explanation."}}]}`,
		DoneSignal,
	})
	defer server.Close()

	generator := NewGptScriptGenerator(&config.GptConfig{
		ApiUrl: server.URL,
		ApiKey: "test-key",
		Model:  "gpt-4o-mini",
	}, NewZerologWrapper())

	out, errCh := generator.Generate(context.Background(), outbound.GenerateNarrationScriptRequest{
		SlideTitle: "Edge cases",
		SlideText:  "Some bullets",
	})

	script := collectScript(t, out, errCh)
	if script != "A full explanation." {
		t.Fatalf("Unexpected script %q", script)
	}
}

package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/donovanhide/eventsource"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/config"
)

const DoneSignal = "[DONE]"
const MaxStreamRetries = 3

type chatGptRequest struct {
	Stream   bool             `json:"stream"`
	Model    string           `json:"model"`
	Messages []chatGptMessage `json:"messages"`
}

type chatGptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatGptChunkBody struct {
	Choices []chatGptResponseChoice `json:"choices"`
}

type chatGptResponseChoice struct {
	Index int `json:"index"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type gptScriptGenerator struct {
	logger    outbound.LoggerPort
	gptConfig *config.GptConfig
}

// NewGptScriptGenerator streams a spoken explanation of a slide from the chat
// completion endpoint. Used only when GPT explanations are enabled; otherwise
// slides are narrated verbatim.
func NewGptScriptGenerator(gptConfig *config.GptConfig, logger outbound.LoggerPort) outbound.NarrationScriptGeneratorPort {
	return &gptScriptGenerator{
		logger:    logger,
		gptConfig: gptConfig,
	}
}

func (s *gptScriptGenerator) Generate(ctx context.Context, scriptReq outbound.GenerateNarrationScriptRequest) (<-chan string, <-chan error) {
	out := make(chan string)
	errCh := make(chan error)

	retryCount := 0

	newCtx, cancel := context.WithCancel(ctx)

	// Reading the stream runs on its own goroutine. The caller is a pool
	// worker already, so parking the stream reader on the pool as well would
	// let a full pool block the narration it is serving.
	go func() {
		defer close(out)
		defer close(errCh)
		defer cancel()
		req, err := s.createRequest(ctx, scriptReq)
		if err != nil {
			s.logger.Error(err, "Failed to create HTTP request for explanation stream")
			errCh <- err
			return
		}

		stream, err := eventsource.SubscribeWithRequest("", req)
		if err != nil {
			s.logger.Error(err, "Failed to subscribe to explanation stream")
			errCh <- err
			return
		}
		for {
			select {
			case <-newCtx.Done():
				return
			case ev := <-stream.Events:
				if ev.Data() != DoneSignal {
					payload, err := s.extractPayload(ev)
					if err != nil {
						errCh <- err
						cancel()
						return
					}
					if payload != "" {
						out <- payload
					}
				}
				retryCount = 0
			case err := <-stream.Errors:
				if err == io.EOF {
					s.logger.Debug("Explanation stream closed")
					return
				} else if retryCount < MaxStreamRetries {
					s.logger.ErrorWithFields(err, "Error occurred during streaming, retrying", map[string]interface{}{
						"retry_count": retryCount})
					retryCount++
					continue
				}
				s.logger.Error(err, "Error occurred during streaming, max retries reached")
				errCh <- err
				cancel()
				return
			}
		}
	}()

	return out, errCh
}

func (s *gptScriptGenerator) extractPayload(event eventsource.Event) (string, error) {
	var chunkBody chatGptChunkBody
	err := json.Unmarshal([]byte(event.Data()), &chunkBody)
	if err != nil {
		s.logger.Error(err, "Failed to unmarshal event data")
		return "", err
	}

	// The stream interleaves housekeeping chunks with an empty choices array.
	if len(chunkBody.Choices) == 0 {
		return "", nil
	}

	return chunkBody.Choices[0].Delta.Content, nil
}

func (s *gptScriptGenerator) createRequest(ctx context.Context, scriptReq outbound.GenerateNarrationScriptRequest) (*http.Request, error) {
	promptMessage := chatGptMessage{
		Role: "system",
		Content: "You narrate presentation slides for a video voice-over. " +
			"Given a slide's title and bullet text, produce a short spoken " +
			"explanation of the slide in plain prose, two to four sentences, " +
			"with no markup, no bullet symbols and no stage directions.",
	}
	slideMessage := chatGptMessage{
		Role:    "user",
		Content: fmt.Sprintf("Title: %s\n\n%s", scriptReq.SlideTitle, scriptReq.SlideText),
	}

	promptReq := chatGptRequest{
		Stream:   true,
		Model:    s.gptConfig.Model,
		Messages: []chatGptMessage{promptMessage, slideMessage},
	}

	payloadBytes, err := json.Marshal(promptReq)
	if err != nil {
		s.logger.Error(err, "Failed to marshal the request body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.gptConfig.ApiUrl, bytes.NewBuffer(payloadBytes))
	if err != nil {
		s.logger.Error(err, "Failed to create the HTTP request")
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.gptConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

package adapters

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/config"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type ssmlSpeak struct {
	XMLName xml.Name  `xml:"speak"`
	Version string    `xml:"version,attr"`
	Lang    string    `xml:"xml:lang,attr"`
	Voice   ssmlVoice `xml:"voice"`
}

type ssmlVoice struct {
	Name    string      `xml:"name,attr"`
	Prosody ssmlProsody `xml:"prosody"`
}

type ssmlProsody struct {
	Rate  string `xml:"rate,attr"`
	Pitch string `xml:"pitch,attr"`
	Text  string `xml:",chardata"`
}

type azureSpeechSynthesizer struct {
	ContentFetcher
	logger       outbound.LoggerPort
	speechConfig *config.SpeechConfig
}

func NewAzureSpeechSynthesizer(contentFetcher ContentFetcher, speechConfig *config.SpeechConfig, logger outbound.LoggerPort) outbound.SpeechSynthesizerPort {
	return &azureSpeechSynthesizer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		speechConfig:   speechConfig,
	}
}

// Synthesize sends one slide's narration text to the regional speech endpoint
// as SSML and returns the audio payload. One call per slide; failures abort
// the run.
func (a *azureSpeechSynthesizer) Synthesize(ctx context.Context, synthReq outbound.SynthesizeSpeechRequest) ([]byte, error) {
	req, err := a.getRequest(ctx, synthReq)
	if err != nil {
		a.logger.ErrorWithFields(err, "Failed to construct the speech synthesis request", map[string]interface{}{
			"slide_index": synthReq.SlideIndex,
		})
		return nil, &domain.SynthesisError{SlideIndex: synthReq.SlideIndex, Reason: "failed to construct request", Err: err}
	}

	payload, err := a.FetchContent(req)
	if err != nil {
		return nil, &domain.SynthesisError{SlideIndex: synthReq.SlideIndex, Reason: "speech service call failed", Err: err}
	}
	if len(payload) == 0 {
		return nil, &domain.SynthesisError{SlideIndex: synthReq.SlideIndex, Reason: "speech service returned an empty payload"}
	}

	return payload, nil
}

func (a *azureSpeechSynthesizer) getRequest(ctx context.Context, synthReq outbound.SynthesizeSpeechRequest) (*http.Request, error) {
	voice := a.speechConfig.VoiceName
	if synthReq.Voice != "" {
		voice = synthReq.Voice
	}
	rate := a.speechConfig.Rate
	if synthReq.Rate != "" {
		rate = synthReq.Rate
	}
	pitch := a.speechConfig.Pitch
	if synthReq.Pitch != "" {
		pitch = synthReq.Pitch
	}

	body := ssmlSpeak{
		Version: "1.0",
		Lang:    "en-US",
		Voice: ssmlVoice{
			Name: voice,
			Prosody: ssmlProsody{
				Rate:  rate,
				Pitch: pitch,
				Text:  synthReq.Text,
			},
		},
	}

	ssmlPayload, err := xml.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := a.speechConfig.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", a.speechConfig.Region)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(ssmlPayload))
	if err != nil {
		return nil, err
	}

	reqHeaders := map[string]string{
		"Ocp-Apim-Subscription-Key": a.speechConfig.ApiKey,
		"Content-Type":              "application/ssml+xml",
		"X-Microsoft-OutputFormat":  a.speechConfig.OutputFormat,
	}
	for key, value := range reqHeaders {
		req.Header.Add(key, value)
	}

	return req, nil
}

package config

import (
	"fmt"
	"os"
)

type SpeechConfig struct {
	ApiKey string
	Region string
	// Endpoint overrides the regional endpoint when set; used for
	// self-hosted gateways and tests.
	Endpoint  string
	VoiceName string
	// Rate and Pitch are SSML prosody adjustments, e.g. "+0%" and "+0Hz".
	Rate         string
	Pitch        string
	OutputFormat string
}

func GetSpeechConfig() (*SpeechConfig, error) {
	apiKey := os.Getenv("SPEECH_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SPEECH_API_KEY must be set")
	}
	region := os.Getenv("SPEECH_REGION")
	if region == "" {
		return nil, fmt.Errorf("SPEECH_REGION must be set")
	}
	voiceName := os.Getenv("SPEECH_VOICE_NAME")
	if voiceName == "" {
		voiceName = "en-US-JennyNeural"
	}
	rate := os.Getenv("SPEECH_RATE")
	if rate == "" {
		rate = "+0%"
	}
	pitch := os.Getenv("SPEECH_PITCH")
	if pitch == "" {
		pitch = "+0Hz"
	}
	outputFormat := os.Getenv("SPEECH_OUTPUT_FORMAT")
	if outputFormat == "" {
		outputFormat = "audio-16khz-128kbitrate-mono-mp3"
	}

	return &SpeechConfig{
		ApiKey:       apiKey,
		Region:       region,
		Endpoint:     os.Getenv("SPEECH_ENDPOINT"),
		VoiceName:    voiceName,
		Rate:         rate,
		Pitch:        pitch,
		OutputFormat: outputFormat,
	}, nil
}

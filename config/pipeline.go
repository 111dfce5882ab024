package config

import (
	"fmt"
	"os"
	"strconv"
)

type PipelineConfig struct {
	// MaxInFlight bounds per-slide remote calls running at once, to respect
	// third-party rate limits.
	MaxInFlight int
	WorkDir     string
}

func GetPipelineConfig() (*PipelineConfig, error) {
	maxInFlight := 4
	if v := os.Getenv("PIPELINE_MAX_IN_FLIGHT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("failed to parse PIPELINE_MAX_IN_FLIGHT")
		}
		maxInFlight = parsed
	}

	workDir := os.Getenv("PIPELINE_WORK_DIR")
	if workDir == "" {
		workDir = os.TempDir()
	}

	return &PipelineConfig{
		MaxInFlight: maxInFlight,
		WorkDir:     workDir,
	}, nil
}

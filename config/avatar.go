package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type AvatarConfig struct {
	ApiUrl string
	// ApiKey is optional: when empty the offline card renderer is used
	// instead of the remote avatar service.
	ApiKey       string
	PollInterval time.Duration
	// WaitBudget caps the total time spent polling one render job.
	WaitBudget time.Duration
}

func GetAvatarConfig() (*AvatarConfig, error) {
	apiUrl := os.Getenv("AVATAR_API_URL")
	if apiUrl == "" {
		apiUrl = "https://api.d-id.com"
	}
	apiKey := os.Getenv("AVATAR_API_KEY")

	pollInterval := time.Second
	if v := os.Getenv("AVATAR_POLL_INTERVAL_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse AVATAR_POLL_INTERVAL_SECONDS")
		}
		pollInterval = time.Duration(seconds) * time.Second
	}

	waitBudget := 60 * time.Second
	if v := os.Getenv("AVATAR_WAIT_BUDGET_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse AVATAR_WAIT_BUDGET_SECONDS")
		}
		waitBudget = time.Duration(seconds) * time.Second
	}

	return &AvatarConfig{
		ApiUrl:       apiUrl,
		ApiKey:       apiKey,
		PollInterval: pollInterval,
		WaitBudget:   waitBudget,
	}, nil
}

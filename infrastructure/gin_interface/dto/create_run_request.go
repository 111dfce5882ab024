package dto

type CreateRunRequest struct {
	AvatarStyle string `form:"avatar_style"`
	Voice       string `form:"voice"`
	Rate        string `form:"rate"`
	Pitch       string `form:"pitch"`
	Explain     bool   `form:"explain"`
}

type CreateRunResponse struct {
	RunID       string `json:"run_id"`
	SlideCount  int    `json:"slide_count"`
	VideoKey    string `json:"video_key"`
	VideoRegion string `json:"video_region"`
}

type RunStatusResponse struct {
	RunID       string `json:"run_id"`
	State       string `json:"state"`
	SlideCount  int    `json:"slide_count"`
	VideoKey    string `json:"video_key,omitempty"`
	VideoRegion string `json:"video_region,omitempty"`
	FailReason  string `json:"fail_reason,omitempty"`
}

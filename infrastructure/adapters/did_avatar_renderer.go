package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/config"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type didPresenter struct {
	SourceUrl string
}

// Presenter presets mirror the hosted default presenters offered per style.
var didPresenters = map[domain.AvatarStyle]didPresenter{
	domain.ProfessionalAvatarStyle: {SourceUrl: "https://create-images-results.d-id.com/DefaultPresenters/John_f/image.jpg"},
	domain.CasualAvatarStyle:       {SourceUrl: "https://create-images-results.d-id.com/DefaultPresenters/Sarah_f/image.jpg"},
	domain.EducationalAvatarStyle:  {SourceUrl: "https://create-images-results.d-id.com/DefaultPresenters/Emma_f/image.jpg"},
}

type didUploadAudioResponse struct {
	Url string `json:"url"`
}

type didCreateTalkRequest struct {
	Script    didTalkScript `json:"script"`
	SourceUrl string        `json:"source_url"`
	Config    didTalkConfig `json:"config"`
}

type didTalkScript struct {
	Type     string `json:"type"`
	AudioUrl string `json:"audio_url"`
}

type didTalkConfig struct {
	Fluent   bool `json:"fluent"`
	PadAudio int  `json:"pad_audio"`
}

type didCreateTalkResponse struct {
	Id string `json:"id"`
}

type didTalkStatusResponse struct {
	Status    string `json:"status"`
	ResultUrl string `json:"result_url"`
	Error     string `json:"error"`
}

type didAvatarRenderer struct {
	ContentFetcher
	logger       outbound.LoggerPort
	avatarConfig *config.AvatarConfig
	workDir      string
}

func NewDIDAvatarRenderer(contentFetcher ContentFetcher, avatarConfig *config.AvatarConfig, workDir string, logger outbound.LoggerPort) outbound.AvatarRendererPort {
	return &didAvatarRenderer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		avatarConfig:   avatarConfig,
		workDir:        workDir,
	}
}

// Render uploads the narration audio, creates a talk job for the selected
// presenter, polls the job until it is ready or the wait budget elapses, and
// downloads the finished clip to a temp file.
func (r *didAvatarRenderer) Render(ctx context.Context, renderReq outbound.RenderAvatarRequest) (*outbound.RenderAvatarResponse, error) {
	audioUrl, err := r.uploadAudio(ctx, renderReq.Audio)
	if err != nil {
		return nil, &domain.RenderError{SlideIndex: renderReq.SlideIndex, Reason: "failed to upload narration audio", Err: err}
	}

	talkId, err := r.createTalk(ctx, audioUrl, renderReq.Style)
	if err != nil {
		return nil, &domain.RenderError{SlideIndex: renderReq.SlideIndex, Reason: "failed to create render job", Err: err}
	}

	resultUrl, err := r.waitForTalk(ctx, talkId, renderReq.SlideIndex)
	if err != nil {
		return nil, err
	}

	fileName, err := r.downloadClip(ctx, resultUrl)
	if err != nil {
		return nil, &domain.RenderError{SlideIndex: renderReq.SlideIndex, Reason: "failed to download rendered clip", Err: err}
	}

	return &outbound.RenderAvatarResponse{FileName: fileName}, nil
}

func (r *didAvatarRenderer) uploadAudio(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "narration.mp3")
	if err != nil {
		return "", err
	}
	if _, err = part.Write(audio); err != nil {
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.avatarConfig.ApiUrl+"/audios", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Basic "+r.avatarConfig.ApiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	payload, err := r.FetchContent(req)
	if err != nil {
		return "", err
	}

	var uploadRes didUploadAudioResponse
	if err = json.Unmarshal(payload, &uploadRes); err != nil {
		return "", err
	}
	if uploadRes.Url == "" {
		return "", errors.New("audio upload response is missing a url")
	}

	return uploadRes.Url, nil
}

func (r *didAvatarRenderer) createTalk(ctx context.Context, audioUrl string, style domain.AvatarStyle) (string, error) {
	presenter, ok := didPresenters[style]
	if !ok {
		presenter = didPresenters[domain.ProfessionalAvatarStyle]
	}

	reqBody := didCreateTalkRequest{
		Script: didTalkScript{
			Type:     "audio",
			AudioUrl: audioUrl,
		},
		SourceUrl: presenter.SourceUrl,
		Config: didTalkConfig{
			Fluent:   true,
			PadAudio: 0,
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.avatarConfig.ApiUrl+"/talks", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Basic "+r.avatarConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	payload, err := r.FetchContent(req)
	if err != nil {
		return "", err
	}

	var createRes didCreateTalkResponse
	if err = json.Unmarshal(payload, &createRes); err != nil {
		return "", err
	}
	if createRes.Id == "" {
		return "", errors.New("create talk response is missing an id")
	}

	return createRes.Id, nil
}

// waitForTalk polls the job at the configured interval until the remote side
// reports done or error. The wait budget is a hard deadline: status requests
// run under a budget-derived context, so a hung poll is cut off mid-flight
// rather than only between polls.
func (r *didAvatarRenderer) waitForTalk(ctx context.Context, talkId string, slideIndex int) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, r.avatarConfig.WaitBudget)
	defer cancel()
	ticker := time.NewTicker(r.avatarConfig.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.logger.ErrorWithFields(nil, "Avatar render exceeded the wait budget", map[string]interface{}{
				"talk_id":     talkId,
				"slide_index": slideIndex,
			})
			return "", &domain.RenderTimeoutError{SlideIndex: slideIndex}
		case <-ticker.C:
			status, err := r.fetchTalkStatus(waitCtx, talkId)
			if err != nil {
				if waitCtx.Err() != nil && ctx.Err() == nil {
					return "", &domain.RenderTimeoutError{SlideIndex: slideIndex}
				}
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				return "", &domain.RenderError{SlideIndex: slideIndex, Reason: "failed to poll render job", Err: err}
			}
			switch status.Status {
			case "done":
				return status.ResultUrl, nil
			case "error", "rejected":
				return "", &domain.RenderError{SlideIndex: slideIndex, Reason: "render job failed: " + status.Error}
			}
		}
	}
}

func (r *didAvatarRenderer) fetchTalkStatus(ctx context.Context, talkId string) (*didTalkStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.avatarConfig.ApiUrl+"/talks/"+talkId, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+r.avatarConfig.ApiKey)

	payload, err := r.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var status didTalkStatusResponse
	if err = json.Unmarshal(payload, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (r *didAvatarRenderer) downloadClip(ctx context.Context, resultUrl string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultUrl, nil)
	if err != nil {
		return "", err
	}

	payload, err := r.FetchContent(req)
	if err != nil {
		return "", err
	}

	fileName := filepath.Join(r.workDir, uuid.NewString()+".mp4")
	if err = os.WriteFile(fileName, payload, 0o644); err != nil {
		return "", err
	}

	return fileName, nil
}

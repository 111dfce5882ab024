package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AnantSoni360/Pptvideo/application/ports/inbound"
	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/domain"
	"github.com/AnantSoni360/Pptvideo/infrastructure/gin_interface/dto"
	"github.com/AnantSoni360/Pptvideo/middleware"
)

type RunController interface {
	CreateRun(c *gin.Context)
	GetRun(c *gin.Context)
	StreamRunEvents(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

// A subscriber can connect before the pipeline's first state save lands, so
// the event stream tolerates a few missing reads before giving up.
const maxStreamMisses = 5

type runController struct {
	logger       outbound.LoggerPort
	pipeline     inbound.VideoPipelinePort
	runStore     outbound.RunStorePort
	workDir      string
	pollInterval time.Duration
}

func NewRunController(logger outbound.LoggerPort, pipeline inbound.VideoPipelinePort,
	runStore outbound.RunStorePort, workDir string) RunController {
	return &runController{
		logger:       logger,
		pipeline:     pipeline,
		runStore:     runStore,
		workDir:      workDir,
		pollInterval: time.Second,
	}
}

// CreateRun accepts a multipart deck upload and runs the conversion pipeline
// to completion, mirroring the upload-and-wait flow of the original UI.
func (r *runController) CreateRun(c *gin.Context) {
	newCtx, cancel := context.WithCancel(c)
	defer cancel()

	var createRunRequest dto.CreateRunRequest
	if err := c.ShouldBind(&createRunRequest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	style, ok := domain.ParseAvatarStyle(createRunRequest.AvatarStyle)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown avatar style: " + createRunRequest.AvatarStyle})
		return
	}

	deck, err := c.FormFile("deck")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "a deck file is required"})
		return
	}

	runID := uuid.NewString()
	deckPath := filepath.Join(r.workDir, runID+".pptx")
	if err = c.SaveUploadedFile(deck, deckPath); err != nil {
		r.logger.Error(err, "failed to stage uploaded deck")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to store uploaded deck"})
		return
	}
	defer func() {
		err := os.Remove(deckPath)
		if err != nil {
			r.logger.Error(err, "failed to remove uploaded deck")
		}
	}()

	res, err := r.pipeline.StartRun(newCtx, inbound.StartRunParams{
		RunID:       runID,
		DeckPath:    deckPath,
		AvatarStyle: style,
		Narration: domain.NarrationSettings{
			Voice:        createRunRequest.Voice,
			Rate:         createRunRequest.Rate,
			Pitch:        createRunRequest.Pitch,
			ExpandScript: createRunRequest.Explain,
		},
	})
	if err != nil {
		c.AbortWithStatusJSON(statusForPipelineError(err), gin.H{
			"run_id": runID,
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.CreateRunResponse{
		RunID:       res.RunID,
		SlideCount:  res.SlideCount,
		VideoKey:    res.VideoKey,
		VideoRegion: res.VideoRegion,
	})
}

func (r *runController) GetRun(c *gin.Context) {
	record, err := r.runStore.Get(c, c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.RunStatusResponse{
		RunID:       record.RunID,
		State:       string(record.State),
		SlideCount:  record.SlideCount,
		VideoKey:    record.VideoKey,
		VideoRegion: record.VideoRegion,
		FailReason:  record.FailReason,
	})
}

// StreamRunEvents pushes the run's state over SSE once a second until the run
// reaches a terminal state or the client goes away, so a UI can show live
// progress while the upload request is still processing.
func (r *runController) StreamRunEvents(c *gin.Context) {
	runID := c.Param("id")
	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	misses := 0
	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
			record, err := r.runStore.Get(c, runID)
			if err != nil {
				misses++
				if misses >= maxStreamMisses {
					r.logger.Error(err, "failed to fetch run record for event stream")
					return
				}
				continue
			}
			misses = 0

			payload, err := json.Marshal(dto.RunStatusResponse{
				RunID:       record.RunID,
				State:       string(record.State),
				SlideCount:  record.SlideCount,
				VideoKey:    record.VideoKey,
				VideoRegion: record.VideoRegion,
				FailReason:  record.FailReason,
			})
			if err != nil {
				r.logger.Error(err, "failed to marshal run event")
				return
			}

			if _, err = c.Writer.WriteString("data: " + string(payload) + "\n\n"); err != nil {
				return
			}
			c.Writer.Flush()

			if record.State == domain.RunComplete || record.State == domain.RunFailed {
				return
			}
		}
	}
}

func (r *runController) RegisterRoutes(g *gin.Engine) {
	g.POST("/runs", r.CreateRun)
	g.GET("/runs/:id", r.GetRun)
	g.GET("/runs/:id/events", middleware.SSEMiddleware(), r.StreamRunEvents)
}

// statusForPipelineError maps the error taxonomy onto response codes: bad
// input decks are client errors, remote-service and assembly failures are
// upstream errors.
func statusForPipelineError(err error) int {
	var loadErr *domain.LoadError
	var emptyErr *domain.EmptyContentError
	if errors.As(err, &loadErr) || errors.As(err, &emptyErr) {
		return http.StatusBadRequest
	}

	var timeoutErr *domain.RenderTimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout
	}

	var synthErr *domain.SynthesisError
	var renderErr *domain.RenderError
	if errors.As(err, &synthErr) || errors.As(err, &renderErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

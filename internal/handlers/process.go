package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"djset-backend/internal/models"
	"djset-backend/internal/pipeline"
	"djset-backend/internal/store"
)

// Processor triggers a pipeline run for a project.
type Processor interface {
	StartProcessing(ctx context.Context, projectID int64) error
}

type ProcessHandler struct {
	orchestrator Processor
	logger       zerolog.Logger
}

func NewProcessHandler(orchestrator Processor, logger zerolog.Logger) *ProcessHandler {
	return &ProcessHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Process kicks off the four-stage pipeline for a project. The response is
// an acknowledgment only; stage outcomes are observed by polling project
// and job state.
func (h *ProcessHandler) Process(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	if err := h.orchestrator.StartProcessing(c.Request.Context(), projectID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		case errors.Is(err, pipeline.ErrAlreadyProcessing):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "project is already processing"})
		case errors.Is(err, pipeline.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "project has already been processed"})
		default:
			h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to start processing")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to start processing"})
		}
		return
	}

	c.JSON(http.StatusOK, models.ProcessResponse{
		Success:   true,
		Message:   "processing started",
		ProjectID: projectID,
	})
}

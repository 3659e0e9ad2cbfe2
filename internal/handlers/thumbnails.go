package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"djset-backend/internal/models"
	"djset-backend/internal/store"
)

// ThumbnailStore selects thumbnails.
type ThumbnailStore interface {
	SelectThumbnail(projectID, thumbnailID int64) error
}

type ThumbnailsHandler struct {
	store  ThumbnailStore
	logger zerolog.Logger
}

func NewThumbnailsHandler(thumbnailStore ThumbnailStore, logger zerolog.Logger) *ThumbnailsHandler {
	return &ThumbnailsHandler{
		store:  thumbnailStore,
		logger: logger,
	}
}

// SelectThumbnail makes the targeted thumbnail the project's only selected
// one. Repeating the call with the same thumbnail is a no-op.
func (h *ThumbnailsHandler) SelectThumbnail(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	thumbnailID, err := parseID(c.Param("thumbnail_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid thumbnail id"})
		return
	}

	if err := h.store.SelectThumbnail(projectID, thumbnailID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "thumbnail not found"})
			return
		}
		h.logger.Error().Err(err).
			Int64("project_id", projectID).
			Int64("thumbnail_id", thumbnailID).
			Msg("failed to select thumbnail")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to select thumbnail"})
		return
	}

	c.JSON(http.StatusOK, models.SelectThumbnailResponse{
		Success: true,
		Message: "thumbnail selected",
	})
}

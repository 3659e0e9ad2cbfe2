package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"djset-backend/internal/models"
)

// UploadStore creates the project row for an accepted upload.
type UploadStore interface {
	CreateProject(name, description, originalPath string) (*models.Project, error)
}

// UploadSaver persists the uploaded video file.
type UploadSaver interface {
	SaveUpload(src io.Reader, originalFilename string) (string, error)
}

type UploadHandler struct {
	store  UploadStore
	files  UploadSaver
	logger zerolog.Logger
}

func NewUploadHandler(uploadStore UploadStore, files UploadSaver, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		store:  uploadStore,
		files:  files,
		logger: logger,
	}
}

// Upload accepts a multipart DJ-set video and creates a pending project for
// it. Processing is a separate, explicit trigger.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no file uploaded"})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "project name is required"})
		return
	}
	description := strings.TrimSpace(c.PostForm("description"))

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read uploaded file",
			Message: err.Error(),
		})
		return
	}
	defer src.Close()

	path, err := h.files.SaveUpload(src, fileHeader.Filename)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to store uploaded file"})
		return
	}

	project, err := h.store.CreateProject(name, description, path)
	if err != nil {
		h.logger.Error().Err(err).Str("name", name).Msg("failed to create project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create project"})
		return
	}

	h.logger.Info().
		Int64("project_id", project.ID).
		Str("file_path", path).
		Msg("project created from upload")

	c.JSON(http.StatusOK, models.UploadResponse{
		Success:   true,
		ProjectID: project.ID,
		Message:   "upload accepted",
		FilePath:  path,
	})
}

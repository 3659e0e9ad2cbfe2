package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"djset-backend/internal/models"
	"djset-backend/internal/store"
)

// ProjectStore is the store surface the project read/delete handlers use.
type ProjectStore interface {
	ListProjects() ([]models.Project, error)
	GetProject(projectID int64) (*models.Project, error)
	ListTracks(projectID int64) ([]models.Track, error)
	ListThumbnails(projectID int64) ([]models.Thumbnail, error)
	ListJobs(projectID int64) ([]models.ProcessingJob, error)
	DeleteProject(projectID int64) error
}

// ArtifactRemover deletes a project's artifact directory.
type ArtifactRemover interface {
	RemoveProject(projectID int64) error
}

type ProjectsHandler struct {
	store  ProjectStore
	files  ArtifactRemover
	logger zerolog.Logger
}

func NewProjectsHandler(projectStore ProjectStore, files ArtifactRemover, logger zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		store:  projectStore,
		files:  files,
		logger: logger,
	}
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list projects")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list projects"})
		return
	}

	responses := make([]models.ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = models.NewProjectResponse(&projects[i])
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: responses})
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to get project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get project"})
		return
	}

	tracks, err := h.store.ListTracks(projectID)
	if err != nil {
		h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to list tracks")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list tracks"})
		return
	}

	thumbnails, err := h.store.ListThumbnails(projectID)
	if err != nil {
		h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to list thumbnails")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list thumbnails"})
		return
	}

	jobs, err := h.store.ListJobs(projectID)
	if err != nil {
		h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to list jobs")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list jobs"})
		return
	}

	detail := models.ProjectDetailResponse{
		Project:    models.NewProjectResponse(project),
		Tracks:     make([]models.TrackResponse, len(tracks)),
		Thumbnails: make([]models.ThumbnailResponse, len(thumbnails)),
		Jobs:       make([]models.JobResponse, len(jobs)),
	}
	for i := range tracks {
		detail.Tracks[i] = models.NewTrackResponse(&tracks[i])
	}
	for i := range thumbnails {
		detail.Thumbnails[i] = models.NewThumbnailResponse(&thumbnails[i])
	}
	for i := range jobs {
		detail.Jobs[i] = models.NewJobResponse(&jobs[i])
	}

	c.JSON(http.StatusOK, detail)
}

func (h *ProjectsHandler) GetStatus(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to get project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get project"})
		return
	}

	resp := models.StatusResponse{
		ProjectID: project.ID,
		Status:    project.Status,
		UpdatedAt: project.UpdatedAt,
	}
	if project.ProcessedPath.Valid {
		resp.ProcessedPath = project.ProcessedPath.String
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	if err := h.store.DeleteProject(projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to delete project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete project"})
		return
	}

	if err := h.files.RemoveProject(projectID); err != nil {
		// Row is gone; leftover artifacts are only a disk-space concern.
		h.logger.Warn().Err(err).Int64("project_id", projectID).Msg("failed to remove project artifacts")
	}

	c.JSON(http.StatusOK, gin.H{"message": "project deleted successfully"})
}

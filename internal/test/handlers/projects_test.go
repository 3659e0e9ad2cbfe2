package handlers_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"djset-backend/internal/handlers"
	"djset-backend/internal/models"
	"djset-backend/internal/store"
)

type fakeProjectStore struct {
	projects   map[int64]*models.Project
	tracks     map[int64][]models.Track
	thumbnails map[int64][]models.Thumbnail
	jobs       map[int64][]models.ProcessingJob

	listErr error
	deleted []int64
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{
		projects:   make(map[int64]*models.Project),
		tracks:     make(map[int64][]models.Track),
		thumbnails: make(map[int64][]models.Thumbnail),
		jobs:       make(map[int64][]models.ProcessingJob),
	}
}

func (s *fakeProjectStore) ListProjects() ([]models.Project, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var projects []models.Project
	for _, p := range s.projects {
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *fakeProjectStore) GetProject(projectID int64) (*models.Project, error) {
	p, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project: %w", store.ErrNotFound)
	}
	return p, nil
}

func (s *fakeProjectStore) ListTracks(projectID int64) ([]models.Track, error) {
	return s.tracks[projectID], nil
}

func (s *fakeProjectStore) ListThumbnails(projectID int64) ([]models.Thumbnail, error) {
	return s.thumbnails[projectID], nil
}

func (s *fakeProjectStore) ListJobs(projectID int64) ([]models.ProcessingJob, error) {
	return s.jobs[projectID], nil
}

func (s *fakeProjectStore) DeleteProject(projectID int64) error {
	if _, ok := s.projects[projectID]; !ok {
		return fmt.Errorf("project: %w", store.ErrNotFound)
	}
	delete(s.projects, projectID)
	s.deleted = append(s.deleted, projectID)
	return nil
}

type fakeRemover struct {
	removed []int64
}

func (r *fakeRemover) RemoveProject(projectID int64) error {
	r.removed = append(r.removed, projectID)
	return nil
}

func projectsRouter(projectStore *fakeProjectStore, remover *fakeRemover) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewProjectsHandler(projectStore, remover, zerolog.Nop())
	router := gin.New()
	router.GET("/api/projects", handler.ListProjects)
	router.GET("/api/projects/:id", handler.GetProject)
	router.GET("/api/projects/:id/status", handler.GetStatus)
	router.DELETE("/api/projects/:id", handler.DeleteProject)
	return router
}

func seedProject(s *fakeProjectStore) {
	s.projects[1] = &models.Project{
		ID:           1,
		Name:         "Test Set",
		OriginalPath: "/uploads/test.mp4",
		Status:       models.StatusCompleted,
		ProcessedPath: sql.NullString{
			String: "/output/project_1/edited_test.mp4", Valid: true,
		},
	}
	s.tracks[1] = []models.Track{
		{ID: 1, ProjectID: 1, TrackName: "A - B", StartTime: 0, Confidence: 0.9, YouTubeStatus: "available"},
		{ID: 2, ProjectID: 1, TrackName: "C - D", StartTime: 120, Confidence: 0.8, YouTubeStatus: "unknown"},
	}
	s.thumbnails[1] = []models.Thumbnail{
		{ID: 1, ProjectID: 1, FilePath: "thumb_001.jpg", IsSelected: true},
	}
	s.jobs[1] = []models.ProcessingJob{
		{ID: 1, ProjectID: 1, JobType: models.JobTracklistGeneration, Status: models.StatusCompleted},
		{ID: 2, ProjectID: 1, JobType: models.JobYouTubeCheck, Status: models.StatusCompleted},
		{ID: 3, ProjectID: 1, JobType: models.JobVideoEditing, Status: models.StatusCompleted},
		{ID: 4, ProjectID: 1, JobType: models.JobThumbnailGeneration, Status: models.StatusCompleted},
	}
}

func TestListProjects(t *testing.T) {
	projectStore := newFakeProjectStore()
	seedProject(projectStore)
	router := projectsRouter(projectStore, &fakeRemover{})

	req, _ := http.NewRequest("GET", "/api/projects", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "Test Set", resp.Projects[0].Name)
	assert.Equal(t, "completed", resp.Projects[0].Status)
}

func TestListProjectsStoreError(t *testing.T) {
	projectStore := newFakeProjectStore()
	projectStore.listErr = fmt.Errorf("connection refused")
	router := projectsRouter(projectStore, &fakeRemover{})

	req, _ := http.NewRequest("GET", "/api/projects", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetProjectDetail(t *testing.T) {
	projectStore := newFakeProjectStore()
	seedProject(projectStore)
	router := projectsRouter(projectStore, &fakeRemover{})

	req, _ := http.NewRequest("GET", "/api/projects/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ProjectDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Project.ID)
	assert.Equal(t, "/output/project_1/edited_test.mp4", resp.Project.ProcessedPath)
	require.Len(t, resp.Tracks, 2)
	assert.Equal(t, "A - B", resp.Tracks[0].TrackName)
	require.Len(t, resp.Thumbnails, 1)
	assert.True(t, resp.Thumbnails[0].IsSelected)
	require.Len(t, resp.Jobs, 4)
	assert.Equal(t, models.JobTracklistGeneration, resp.Jobs[0].JobType)
}

func TestGetProjectInvalidID(t *testing.T) {
	router := projectsRouter(newFakeProjectStore(), &fakeRemover{})

	for _, id := range []string{"abc", "0", "-5", "1.5"} {
		req, _ := http.NewRequest("GET", "/api/projects/"+id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	router := projectsRouter(newFakeProjectStore(), &fakeRemover{})

	req, _ := http.NewRequest("GET", "/api/projects/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatus(t *testing.T) {
	projectStore := newFakeProjectStore()
	seedProject(projectStore)
	router := projectsRouter(projectStore, &fakeRemover{})

	req, _ := http.NewRequest("GET", "/api/projects/1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ProjectID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "/output/project_1/edited_test.mp4", resp.ProcessedPath)
}

func TestDeleteProject(t *testing.T) {
	projectStore := newFakeProjectStore()
	seedProject(projectStore)
	remover := &fakeRemover{}
	router := projectsRouter(projectStore, remover)

	req, _ := http.NewRequest("DELETE", "/api/projects/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1}, projectStore.deleted)
	assert.Equal(t, []int64{1}, remover.removed)
}

func TestDeleteProjectNotFound(t *testing.T) {
	router := projectsRouter(newFakeProjectStore(), &fakeRemover{})

	req, _ := http.NewRequest("DELETE", "/api/projects/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

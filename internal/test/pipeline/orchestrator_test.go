package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"djset-backend/internal/models"
	"djset-backend/internal/modules"
	"djset-backend/internal/pipeline"
)

// fakeStore is an in-memory pipeline.Store.
type fakeStore struct {
	mu         sync.Mutex
	project    *models.Project
	jobs       []*models.ProcessingJob
	tracks     []models.Track
	thumbnails []models.Thumbnail
	nextJobID  int64
}

func newFakeStore(project *models.Project) *fakeStore {
	return &fakeStore{project: project, nextJobID: 1}
}

func (s *fakeStore) GetProject(projectID int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil || s.project.ID != projectID {
		return nil, fmt.Errorf("project not found")
	}
	copied := *s.project
	return &copied, nil
}

func (s *fakeStore) MarkProjectProcessing(projectID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project.Status != models.StatusPending && s.project.Status != models.StatusFailed {
		return false, nil
	}
	s.project.Status = models.StatusProcessing
	return true, nil
}

func (s *fakeStore) ClearRunResults(projectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = nil
	s.tracks = nil
	s.thumbnails = nil
	return nil
}

func (s *fakeStore) UpdateProjectStatus(projectID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.Status = status
	return nil
}

func (s *fakeStore) SetProjectProcessed(projectID int64, processedPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.ProcessedPath.String = processedPath
	s.project.ProcessedPath.Valid = true
	s.project.Status = models.StatusCompleted
	return nil
}

func (s *fakeStore) CreateJob(projectID int64, jobType string) (*models.ProcessingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &models.ProcessingJob{
		ID:        s.nextJobID,
		ProjectID: projectID,
		JobType:   jobType,
		Status:    models.StatusPending,
	}
	s.nextJobID++
	s.jobs = append(s.jobs, job)
	copied := *job
	return &copied, nil
}

func (s *fakeStore) UpdateJobStatus(jobID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.ID == jobID {
			job.Status = status
		}
	}
	return nil
}

func (s *fakeStore) CompleteJob(jobID int64, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.ID == jobID {
			job.Status = models.StatusCompleted
			job.Result.String, job.Result.Valid = result, true
		}
	}
	return nil
}

func (s *fakeStore) FailUnresolvedJobs(projectID int64, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.Status == models.StatusPending || job.Status == models.StatusProcessing {
			job.Status = models.StatusFailed
			job.ErrorMessage.String, job.ErrorMessage.Valid = errorMessage, true
		}
	}
	return nil
}

func (s *fakeStore) CreateTrack(track *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, *track)
	return nil
}

func (s *fakeStore) CreateThumbnail(thumbnail *models.Thumbnail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thumbnails = append(s.thumbnails, *thumbnail)
	return nil
}

func (s *fakeStore) jobByType(jobType string) *models.ProcessingJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.JobType == jobType {
			copied := *job
			return &copied
		}
	}
	return nil
}

// fakeModules writes artifact files the way the external programs would.
type fakeModules struct {
	tracklist     pipeline.TracklistArtifact
	compatibility []pipeline.CompatibilityEntry
	manifest      modules.ThumbnailManifest

	failStage string
}

func (f *fakeModules) GenerateTracklist(ctx context.Context, videoPath, outputPath string) error {
	if f.failStage == models.JobTracklistGeneration {
		return fmt.Errorf("fingerprint database unavailable")
	}
	return writeJSON(outputPath, f.tracklist)
}

func (f *fakeModules) CheckTracklist(ctx context.Context, tracklistPath, outputPath string) error {
	if f.failStage == models.JobYouTubeCheck {
		return fmt.Errorf("youtube api quota exceeded")
	}
	return writeJSON(outputPath, f.compatibility)
}

func (f *fakeModules) EditVideo(ctx context.Context, videoPath, compatibilityPath, outputPath string) error {
	if f.failStage == models.JobVideoEditing {
		return fmt.Errorf("ffmpeg exited with status 1")
	}
	return os.WriteFile(outputPath, []byte("edited"), 0o644)
}

func (f *fakeModules) GenerateThumbnails(ctx context.Context, videoPath, compatibilityPath, outputDir string, count int) (*modules.ThumbnailManifest, error) {
	if f.failStage == models.JobThumbnailGeneration {
		return nil, fmt.Errorf("frame extraction failed")
	}
	copied := modules.ThumbnailManifest{
		Thumbnails: append([]modules.ThumbnailEntry(nil), f.manifest.Thumbnails...),
	}
	return &copied, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

type tempDirs struct {
	root string
}

func (t tempDirs) ProjectDir(projectID int64) (string, error) {
	dir := filepath.Join(t.root, fmt.Sprintf("project_%d", projectID))
	if err := os.MkdirAll(filepath.Join(dir, "thumbnails"), 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func floatPtr(v float64) *float64 { return &v }

func testProject() *models.Project {
	return &models.Project{
		ID:           1,
		Name:         "Test Set",
		OriginalPath: "/uploads/test_set.mp4",
		Status:       models.StatusPending,
	}
}

func testModules() *fakeModules {
	return &fakeModules{
		tracklist: pipeline.TracklistArtifact{
			File:       "test_set.mp4",
			TrackCount: 3,
			Tracks: []pipeline.TracklistEntry{
				{TrackName: "Daft Punk - One More Time", Confidence: 0.95, StartTime: 0, EndTime: floatPtr(210.5)},
				{TrackName: "Justice - Genesis", Confidence: 0.88, StartTime: 210.5, EndTime: floatPtr(395)},
				{TrackName: "Unknown White Label", Confidence: 0.41, StartTime: 395},
			},
		},
		compatibility: []pipeline.CompatibilityEntry{
			{Artist: "Daft Punk", Title: "One More Time", Status: "available", Reason: ""},
			{Artist: "Justice", Title: "Genesis", Status: "blocked", Reason: "blocked in 2 regions"},
		},
		manifest: modules.ThumbnailManifest{
			Thumbnails: []modules.ThumbnailEntry{
				{Path: "thumbnails/thumb_001.jpg", Timestamp: floatPtr(12.0)},
				{Path: "thumbnails/thumb_002.jpg", Timestamp: floatPtr(240.0)},
			},
		},
	}
}

func newOrchestrator(t *testing.T, store *fakeStore, mods *fakeModules) *pipeline.Orchestrator {
	t.Helper()
	return pipeline.NewOrchestrator(store, mods, tempDirs{root: t.TempDir()}, zerolog.Nop(), 10)
}

func TestStartProcessingFullSuccess(t *testing.T) {
	store := newFakeStore(testProject())
	orchestrator := newOrchestrator(t, store, testModules())

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()

	assert.Equal(t, models.StatusCompleted, store.project.Status)
	require.True(t, store.project.ProcessedPath.Valid)
	assert.Contains(t, store.project.ProcessedPath.String, "edited_test_set.mp4")

	require.Len(t, store.jobs, 4)
	for _, job := range store.jobs {
		assert.Equal(t, models.StatusCompleted, job.Status, "job %s", job.JobType)
		assert.True(t, job.Result.Valid, "job %s should carry a result", job.JobType)
	}

	// Track rows match the tracklist, joined with compatibility results.
	require.Len(t, store.tracks, 3)
	assert.Equal(t, "available", store.tracks[0].YouTubeStatus)
	assert.Equal(t, "blocked", store.tracks[1].YouTubeStatus)
	assert.Equal(t, "blocked in 2 regions", store.tracks[1].Reason.String)

	require.Len(t, store.thumbnails, 2)
	for _, thumb := range store.thumbnails {
		assert.False(t, thumb.IsSelected)
	}
}

func TestStartProcessingJobOrder(t *testing.T) {
	store := newFakeStore(testProject())
	orchestrator := newOrchestrator(t, store, testModules())

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()

	require.Len(t, store.jobs, 4)
	for i, jobType := range models.JobTypes {
		assert.Equal(t, jobType, store.jobs[i].JobType)
	}
}

func TestUnmatchedTrackDefaultsToUnknown(t *testing.T) {
	store := newFakeStore(testProject())
	orchestrator := newOrchestrator(t, store, testModules())

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()

	require.Len(t, store.tracks, 3)
	unmatched := store.tracks[2]
	assert.Equal(t, "Unknown White Label", unmatched.TrackName)
	assert.Equal(t, models.YouTubeUnknown, unmatched.YouTubeStatus)
	assert.False(t, unmatched.Reason.Valid)
}

func TestFailureAtSecondStage(t *testing.T) {
	store := newFakeStore(testProject())
	mods := testModules()
	mods.failStage = models.JobYouTubeCheck
	orchestrator := newOrchestrator(t, store, mods)

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()

	assert.Equal(t, models.StatusFailed, store.project.Status)
	assert.False(t, store.project.ProcessedPath.Valid)

	// Stage 1 keeps its success; the failing stage and the never-reached
	// stages all carry the triggering error.
	tracklistJob := store.jobByType(models.JobTracklistGeneration)
	assert.Equal(t, models.StatusCompleted, tracklistJob.Status)
	assert.False(t, tracklistJob.ErrorMessage.Valid)

	for _, jobType := range []string{models.JobYouTubeCheck, models.JobVideoEditing, models.JobThumbnailGeneration} {
		job := store.jobByType(jobType)
		assert.Equal(t, models.StatusFailed, job.Status, "job %s", jobType)
		require.True(t, job.ErrorMessage.Valid, "job %s", jobType)
		assert.Contains(t, job.ErrorMessage.String, "youtube api quota exceeded")
	}

	assert.Empty(t, store.tracks)
	assert.Empty(t, store.thumbnails)
}

func TestFailureAtFirstStageFailsAllJobs(t *testing.T) {
	store := newFakeStore(testProject())
	mods := testModules()
	mods.failStage = models.JobTracklistGeneration
	orchestrator := newOrchestrator(t, store, mods)

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()

	assert.Equal(t, models.StatusFailed, store.project.Status)
	for _, job := range store.jobs {
		assert.Equal(t, models.StatusFailed, job.Status, "job %s", job.JobType)
	}
}

func TestStartProcessingRejectsCompletedProject(t *testing.T) {
	store := newFakeStore(testProject())
	orchestrator := newOrchestrator(t, store, testModules())

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()
	require.Equal(t, models.StatusCompleted, store.project.Status)

	err := orchestrator.StartProcessing(context.Background(), 1)
	assert.ErrorIs(t, err, pipeline.ErrAlreadyProcessed)

	// The finished run's rows are untouched.
	assert.Equal(t, models.StatusCompleted, store.project.Status)
	assert.Len(t, store.jobs, 4)
	assert.Len(t, store.tracks, 3)
	assert.Len(t, store.thumbnails, 2)
}

func TestRetryAfterFailureClearsPreviousRun(t *testing.T) {
	store := newFakeStore(testProject())
	mods := testModules()
	mods.failStage = models.JobYouTubeCheck
	orchestrator := newOrchestrator(t, store, mods)

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()
	require.Equal(t, models.StatusFailed, store.project.Status)

	mods.failStage = ""
	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()

	// The retry replaces the failed run instead of piling onto it.
	assert.Equal(t, models.StatusCompleted, store.project.Status)
	assert.Len(t, store.jobs, 4)
	assert.Len(t, store.tracks, 3)
	assert.Len(t, store.thumbnails, 2)
	for _, job := range store.jobs {
		assert.Equal(t, models.StatusCompleted, job.Status, "job %s", job.JobType)
	}
}

func TestThumbnailPathsResolvedAgainstProjectDir(t *testing.T) {
	store := newFakeStore(testProject())
	mods := testModules()
	mods.manifest.Thumbnails[1].Path = "/somewhere/else/thumb_002.jpg"
	dirs := tempDirs{root: t.TempDir()}
	orchestrator := pipeline.NewOrchestrator(store, mods, dirs, zerolog.Nop(), 10)

	require.NoError(t, orchestrator.StartProcessing(context.Background(), 1))
	orchestrator.Wait()

	require.Len(t, store.thumbnails, 2)
	want := filepath.Join(dirs.root, "project_1", "thumbnails", "thumb_001.jpg")
	assert.Equal(t, want, store.thumbnails[0].FilePath)
	// Absolute manifest paths are stored verbatim.
	assert.Equal(t, "/somewhere/else/thumb_002.jpg", store.thumbnails[1].FilePath)
}

func TestStartProcessingRejectsConcurrentRun(t *testing.T) {
	project := testProject()
	project.Status = models.StatusProcessing
	store := newFakeStore(project)
	orchestrator := newOrchestrator(t, store, testModules())

	err := orchestrator.StartProcessing(context.Background(), 1)
	assert.ErrorIs(t, err, pipeline.ErrAlreadyProcessing)
	assert.Empty(t, store.jobs)
}

func TestStartProcessingRequiresOriginalPath(t *testing.T) {
	project := testProject()
	project.OriginalPath = ""
	store := newFakeStore(project)
	orchestrator := newOrchestrator(t, store, testModules())

	err := orchestrator.StartProcessing(context.Background(), 1)
	assert.Error(t, err)
	assert.Empty(t, store.jobs)
}

func TestStartProcessingUnknownProject(t *testing.T) {
	store := newFakeStore(testProject())
	orchestrator := newOrchestrator(t, store, testModules())

	assert.Error(t, orchestrator.StartProcessing(context.Background(), 42))
}

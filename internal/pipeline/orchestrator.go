// Package pipeline drives a project's video through the four ordered
// processing stages and reconciles per-stage outcomes into the store.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"djset-backend/internal/models"
	"djset-backend/internal/modules"
)

var (
	// ErrAlreadyProcessing is returned when a run is triggered for a
	// project that already has one in flight.
	ErrAlreadyProcessing = errors.New("project is already processing")

	// ErrAlreadyProcessed is returned when a run is triggered for a
	// project that already completed. Only pending and failed projects
	// can start a run.
	ErrAlreadyProcessed = errors.New("project has already been processed")
)

// Store is the slice of the datastore the orchestrator writes through.
type Store interface {
	GetProject(projectID int64) (*models.Project, error)
	MarkProjectProcessing(projectID int64) (bool, error)
	ClearRunResults(projectID int64) error
	UpdateProjectStatus(projectID int64, status string) error
	SetProjectProcessed(projectID int64, processedPath string) error
	CreateJob(projectID int64, jobType string) (*models.ProcessingJob, error)
	UpdateJobStatus(jobID int64, status string) error
	CompleteJob(jobID int64, result string) error
	FailUnresolvedJobs(projectID int64, errorMessage string) error
	CreateTrack(track *models.Track) error
	CreateThumbnail(thumbnail *models.Thumbnail) error
}

// ModuleClient invokes the external processing modules.
type ModuleClient interface {
	GenerateTracklist(ctx context.Context, videoPath, outputPath string) error
	CheckTracklist(ctx context.Context, tracklistPath, outputPath string) error
	EditVideo(ctx context.Context, videoPath, compatibilityPath, outputPath string) error
	GenerateThumbnails(ctx context.Context, videoPath, compatibilityPath, outputDir string, count int) (*modules.ThumbnailManifest, error)
}

// ArtifactDirs provisions per-project artifact directories.
type ArtifactDirs interface {
	ProjectDir(projectID int64) (string, error)
}

type Orchestrator struct {
	store          Store
	modules        ModuleClient
	dirs           ArtifactDirs
	logger         zerolog.Logger
	thumbnailCount int

	wg sync.WaitGroup
}

func NewOrchestrator(store Store, moduleClient ModuleClient, dirs ArtifactDirs, logger zerolog.Logger, thumbnailCount int) *Orchestrator {
	if thumbnailCount < 1 {
		thumbnailCount = 10
	}
	return &Orchestrator{
		store:          store,
		modules:        moduleClient,
		dirs:           dirs,
		logger:         logger,
		thumbnailCount: thumbnailCount,
	}
}

// StartProcessing transitions the project to processing, creates the four
// stage jobs, and spawns the detached pipeline run. It returns before any
// stage executes; callers observe progress by polling project and job state.
// A pending project starts its first run, a failed one is retried with the
// earlier run's rows cleared, and a completed project is never re-run.
func (o *Orchestrator) StartProcessing(ctx context.Context, projectID int64) error {
	project, err := o.store.GetProject(projectID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(project.OriginalPath) == "" {
		return fmt.Errorf("project %d has no original media path", projectID)
	}
	switch project.Status {
	case models.StatusProcessing:
		return ErrAlreadyProcessing
	case models.StatusCompleted:
		return ErrAlreadyProcessed
	}

	claimed, err := o.store.MarkProjectProcessing(projectID)
	if err != nil {
		return fmt.Errorf("mark project processing: %w", err)
	}
	if !claimed {
		// A concurrent trigger won the claim between the read and the
		// update.
		return ErrAlreadyProcessing
	}

	if err := o.store.ClearRunResults(projectID); err != nil {
		o.abort(projectID, fmt.Errorf("clear previous run: %w", err))
		return fmt.Errorf("clear previous run: %w", err)
	}

	jobIDs := make(map[string]int64, len(models.JobTypes))
	for _, jobType := range models.JobTypes {
		job, err := o.store.CreateJob(projectID, jobType)
		if err != nil {
			o.abort(projectID, fmt.Errorf("create %s job: %w", jobType, err))
			return fmt.Errorf("create %s job: %w", jobType, err)
		}
		jobIDs[jobType] = job.ID
	}

	// The run owns its completion: it detaches from the request context and
	// reports terminal state only through the store.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(context.Background(), project, jobIDs)
	}()

	return nil
}

// Wait blocks until every spawned pipeline run has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, project *models.Project, jobIDs map[string]int64) {
	runLogger := o.logger.With().
		Int64("project_id", project.ID).
		Str("run_id", uuid.NewString()).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			runLogger.Error().Interface("panic", r).Msg("pipeline run panicked")
			o.abort(project.ID, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	dir, err := o.dirs.ProjectDir(project.ID)
	if err != nil {
		runLogger.Error().Err(err).Msg("failed to provision artifact directory")
		o.abort(project.ID, err)
		return
	}

	tracklistPath := filepath.Join(dir, "tracklist.json")
	compatibilityPath := filepath.Join(dir, "compatibility.json")
	editedPath := filepath.Join(dir, "edited_"+filepath.Base(project.OriginalPath))
	thumbnailDir := filepath.Join(dir, "thumbnails")

	runLogger.Info().Msg("pipeline run started")

	err = o.runStage(ctx, jobIDs[models.JobTracklistGeneration], tracklistPath, func() error {
		return o.modules.GenerateTracklist(ctx, project.OriginalPath, tracklistPath)
	})
	if err != nil {
		o.failRun(runLogger, project.ID, models.JobTracklistGeneration, err)
		return
	}

	err = o.runStage(ctx, jobIDs[models.JobYouTubeCheck], compatibilityPath, func() error {
		return o.modules.CheckTracklist(ctx, tracklistPath, compatibilityPath)
	})
	if err != nil {
		o.failRun(runLogger, project.ID, models.JobYouTubeCheck, err)
		return
	}

	// Video editing consumes the compatibility artifact, not the raw
	// tracklist.
	err = o.runStage(ctx, jobIDs[models.JobVideoEditing], editedPath, func() error {
		return o.modules.EditVideo(ctx, project.OriginalPath, compatibilityPath, editedPath)
	})
	if err != nil {
		o.failRun(runLogger, project.ID, models.JobVideoEditing, err)
		return
	}

	thumbJobID := jobIDs[models.JobThumbnailGeneration]
	if err := o.store.UpdateJobStatus(thumbJobID, models.StatusProcessing); err != nil {
		runLogger.Warn().Err(err).Msg("failed to mark thumbnail job processing")
	}
	manifest, err := o.modules.GenerateThumbnails(ctx, project.OriginalPath, compatibilityPath, thumbnailDir, o.thumbnailCount)
	if err != nil {
		o.failRun(runLogger, project.ID, models.JobThumbnailGeneration, err)
		return
	}

	// Relative manifest paths are interpreted against the artifact
	// directory; absolute paths are stored verbatim.
	for i := range manifest.Thumbnails {
		if p := manifest.Thumbnails[i].Path; p != "" && !filepath.IsAbs(p) {
			manifest.Thumbnails[i].Path = filepath.Join(dir, p)
		}
	}

	paths := make([]string, len(manifest.Thumbnails))
	for i, entry := range manifest.Thumbnails {
		paths[i] = entry.Path
	}
	serialized, _ := json.Marshal(paths)
	if err := o.store.CompleteJob(thumbJobID, string(serialized)); err != nil {
		runLogger.Warn().Err(err).Msg("failed to record thumbnail job result")
	}

	if err := o.persistResults(project.ID, tracklistPath, compatibilityPath, manifest); err != nil {
		runLogger.Error().Err(err).Msg("failed to persist pipeline results")
		o.abort(project.ID, err)
		return
	}

	if err := o.store.SetProjectProcessed(project.ID, editedPath); err != nil {
		runLogger.Error().Err(err).Msg("failed to mark project completed")
		o.abort(project.ID, err)
		return
	}

	runLogger.Info().Str("processed_path", editedPath).Msg("pipeline run completed")
}

// runStage executes one stage: the job is marked processing before the
// module runs and completed with its result artifact on success. Failures
// are returned to the caller untouched.
func (o *Orchestrator) runStage(ctx context.Context, jobID int64, result string, invoke func() error) error {
	if err := o.store.UpdateJobStatus(jobID, models.StatusProcessing); err != nil {
		o.logger.Warn().Err(err).Int64("job_id", jobID).Msg("failed to mark job processing")
	}
	if err := invoke(); err != nil {
		return err
	}
	if err := o.store.CompleteJob(jobID, result); err != nil {
		o.logger.Warn().Err(err).Int64("job_id", jobID).Msg("failed to record job result")
	}
	return nil
}

func (o *Orchestrator) persistResults(projectID int64, tracklistPath, compatibilityPath string, manifest *modules.ThumbnailManifest) error {
	tracklist, err := loadTracklist(tracklistPath)
	if err != nil {
		return err
	}
	compatibility, err := loadCompatibility(compatibilityPath)
	if err != nil {
		return err
	}

	for _, track := range buildTracks(projectID, tracklist, compatibility) {
		track := track
		if err := o.store.CreateTrack(&track); err != nil {
			return err
		}
	}

	for _, entry := range manifest.Thumbnails {
		thumbnail := models.Thumbnail{
			ProjectID: projectID,
			FilePath:  entry.Path,
		}
		if entry.Timestamp != nil {
			thumbnail.Timestamp.Float64, thumbnail.Timestamp.Valid = *entry.Timestamp, true
		}
		if err := o.store.CreateThumbnail(&thumbnail); err != nil {
			return err
		}
	}

	return nil
}

// failRun resolves a stage failure: the failing job and every job never
// reached are marked failed with the triggering error, completed jobs keep
// their status, and the project goes terminal failed. Nothing awaits the
// run anymore, so the error is recorded and swallowed.
func (o *Orchestrator) failRun(runLogger zerolog.Logger, projectID int64, jobType string, cause error) {
	runLogger.Error().Err(cause).Str("stage", jobType).Msg("pipeline stage failed")
	o.abort(projectID, cause)
}

func (o *Orchestrator) abort(projectID int64, cause error) {
	if err := o.store.FailUnresolvedJobs(projectID, cause.Error()); err != nil {
		o.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to fail unresolved jobs")
	}
	if err := o.store.UpdateProjectStatus(projectID, models.StatusFailed); err != nil {
		o.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to mark project failed")
	}
}

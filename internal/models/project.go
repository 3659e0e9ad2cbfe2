package models

import (
	"database/sql"
	"time"
)

// Status values shared by projects and processing jobs.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Pipeline stage job types, in execution order.
const (
	JobTracklistGeneration = "tracklist_generation"
	JobYouTubeCheck        = "youtube_check"
	JobVideoEditing        = "video_editing"
	JobThumbnailGeneration = "thumbnail_generation"
)

// JobTypes lists the stage job types in the order the pipeline runs them.
var JobTypes = []string{
	JobTracklistGeneration,
	JobYouTubeCheck,
	JobVideoEditing,
	JobThumbnailGeneration,
}

type Project struct {
	ID            int64
	Name          string
	Description   sql.NullString
	OriginalPath  string
	ProcessedPath sql.NullString
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ProcessingJob struct {
	ID           int64
	ProjectID    int64
	JobType      string
	Status       string
	Result       sql.NullString
	ErrorMessage sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

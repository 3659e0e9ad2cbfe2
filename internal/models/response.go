package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ProjectResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	OriginalPath  string    `json:"original_path"`
	ProcessedPath string    `json:"processed_path,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type ProjectDetailResponse struct {
	Project    ProjectResponse     `json:"project"`
	Tracks     []TrackResponse     `json:"tracks"`
	Thumbnails []ThumbnailResponse `json:"thumbnails"`
	Jobs       []JobResponse       `json:"jobs"`
}

type JobResponse struct {
	ID           int64     `json:"id"`
	JobType      string    `json:"job_type"`
	Status       string    `json:"status"`
	Result       string    `json:"result,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TrackResponse struct {
	ID            int64    `json:"id"`
	TrackName     string   `json:"track_name"`
	Artist        string   `json:"artist,omitempty"`
	Title         string   `json:"title,omitempty"`
	StartTime     float64  `json:"start_time"`
	EndTime       *float64 `json:"end_time,omitempty"`
	Confidence    float64  `json:"confidence"`
	YouTubeStatus string   `json:"youtube_status"`
	Reason        string   `json:"reason,omitempty"`
}

type ThumbnailResponse struct {
	ID         int64     `json:"id"`
	FilePath   string    `json:"file_path"`
	Timestamp  *float64  `json:"timestamp,omitempty"`
	IsSelected bool      `json:"is_selected"`
	CreatedAt  time.Time `json:"created_at"`
}

type StatusResponse struct {
	ProjectID     int64     `json:"project_id"`
	Status        string    `json:"status"`
	ProcessedPath string    `json:"processed_path,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UploadResponse struct {
	Success   bool   `json:"success"`
	ProjectID int64  `json:"project_id"`
	Message   string `json:"message"`
	FilePath  string `json:"file_path"`
}

type ProcessResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProjectID int64  `json:"project_id"`
}

type SelectThumbnailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewProjectResponse flattens nullable columns for the wire format.
func NewProjectResponse(p *Project) ProjectResponse {
	resp := ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		OriginalPath: p.OriginalPath,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Description.Valid {
		resp.Description = p.Description.String
	}
	if p.ProcessedPath.Valid {
		resp.ProcessedPath = p.ProcessedPath.String
	}
	return resp
}

func NewJobResponse(j *ProcessingJob) JobResponse {
	resp := JobResponse{
		ID:        j.ID,
		JobType:   j.JobType,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.Result.Valid {
		resp.Result = j.Result.String
	}
	if j.ErrorMessage.Valid {
		resp.ErrorMessage = j.ErrorMessage.String
	}
	return resp
}

func NewTrackResponse(t *Track) TrackResponse {
	resp := TrackResponse{
		ID:            t.ID,
		TrackName:     t.TrackName,
		StartTime:     t.StartTime,
		Confidence:    t.Confidence,
		YouTubeStatus: t.YouTubeStatus,
	}
	if t.Artist.Valid {
		resp.Artist = t.Artist.String
	}
	if t.Title.Valid {
		resp.Title = t.Title.String
	}
	if t.EndTime.Valid {
		end := t.EndTime.Float64
		resp.EndTime = &end
	}
	if t.Reason.Valid {
		resp.Reason = t.Reason.String
	}
	return resp
}

func NewThumbnailResponse(t *Thumbnail) ThumbnailResponse {
	resp := ThumbnailResponse{
		ID:         t.ID,
		FilePath:   t.FilePath,
		IsSelected: t.IsSelected,
		CreatedAt:  t.CreatedAt,
	}
	if t.Timestamp.Valid {
		ts := t.Timestamp.Float64
		resp.Timestamp = &ts
	}
	return resp
}

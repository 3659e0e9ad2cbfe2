package models

import (
	"database/sql"
	"time"
)

// YouTube compatibility statuses reported by the checker module.
const (
	YouTubeAvailable  = "available"
	YouTubeRestricted = "restricted"
	YouTubeBlocked    = "blocked"
	YouTubeUnknown    = "unknown"
)

type Track struct {
	ID            int64
	ProjectID     int64
	TrackName     string
	Artist        sql.NullString
	Title         sql.NullString
	StartTime     float64
	EndTime       sql.NullFloat64
	Confidence    float64
	YouTubeStatus string
	Reason        sql.NullString
	CreatedAt     time.Time
}

type Thumbnail struct {
	ID         int64
	ProjectID  int64
	FilePath   string
	Timestamp  sql.NullFloat64
	IsSelected bool
	CreatedAt  time.Time
}

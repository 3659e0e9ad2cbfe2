package store

import (
	"fmt"

	"djset-backend/internal/models"
)

func (d *DatabaseClient) CreateTrack(track *models.Track) error {
	err := d.db.QueryRow(`
		INSERT INTO tracks (project_id, track_name, artist, title, start_time, end_time, confidence, youtube_status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, track.ProjectID, track.TrackName, track.Artist, track.Title,
		track.StartTime, track.EndTime, track.Confidence,
		track.YouTubeStatus, track.Reason,
	).Scan(&track.ID, &track.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListTracks(projectID int64) ([]models.Track, error) {
	rows, err := d.db.Query(`
		SELECT id, project_id, track_name, artist, title, start_time, end_time, confidence, youtube_status, reason, created_at
		FROM tracks
		WHERE project_id = $1
		ORDER BY start_time ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		err := rows.Scan(
			&t.ID, &t.ProjectID, &t.TrackName, &t.Artist, &t.Title,
			&t.StartTime, &t.EndTime, &t.Confidence,
			&t.YouTubeStatus, &t.Reason, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	return tracks, rows.Err()
}

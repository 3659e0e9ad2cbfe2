package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"djset-backend/internal/models"
)

// TracklistArtifact mirrors the tracklist JSON the tracklist module writes.
type TracklistArtifact struct {
	File       string           `json:"file"`
	TrackCount int              `json:"track_count"`
	Tracks     []TracklistEntry `json:"tracks"`
}

type TracklistEntry struct {
	TrackName  string   `json:"track_name"`
	Confidence float64  `json:"confidence"`
	StartTime  float64  `json:"start_time"`
	EndTime    *float64 `json:"end_time"`
}

// CompatibilityEntry mirrors one element of the compatibility JSON the
// checker module writes.
type CompatibilityEntry struct {
	Artist        string `json:"artist"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
	OriginalTrack struct {
		TrackName string `json:"track_name"`
	} `json:"original_track"`
}

func loadTracklist(path string) (*TracklistArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tracklist artifact: %w", err)
	}
	var artifact TracklistArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode tracklist artifact: %w", err)
	}
	return &artifact, nil
}

func loadCompatibility(path string) ([]CompatibilityEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compatibility artifact: %w", err)
	}
	var entries []CompatibilityEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode compatibility artifact: %w", err)
	}
	return entries, nil
}

// splitTrackName derives (artist, title) from a "Artist - Title" track name,
// the same convention the checker module uses. Names without a separator
// yield an empty artist and the whole name as title.
func splitTrackName(name string) (artist, title string) {
	if idx := strings.Index(name, " - "); idx >= 0 {
		return strings.TrimSpace(name[:idx]), strings.TrimSpace(name[idx+3:])
	}
	return "", strings.TrimSpace(name)
}

func compatibilityKey(artist, title string) string {
	return artist + "\x00" + title
}

// buildTracks joins the tracklist with the compatibility results on exact
// (artist, title) equality. Tracks without a match default to unknown status
// with no reason.
func buildTracks(projectID int64, tracklist *TracklistArtifact, compatibility []CompatibilityEntry) []models.Track {
	byKey := make(map[string]CompatibilityEntry, len(compatibility))
	for _, entry := range compatibility {
		artist, title := entry.Artist, entry.Title
		if artist == "" && title == "" {
			artist, title = splitTrackName(entry.OriginalTrack.TrackName)
		}
		byKey[compatibilityKey(artist, title)] = entry
	}

	tracks := make([]models.Track, 0, len(tracklist.Tracks))
	for _, entry := range tracklist.Tracks {
		artist, title := splitTrackName(entry.TrackName)

		track := models.Track{
			ProjectID:     projectID,
			TrackName:     entry.TrackName,
			StartTime:     entry.StartTime,
			Confidence:    entry.Confidence,
			YouTubeStatus: models.YouTubeUnknown,
		}
		if artist != "" {
			track.Artist.String, track.Artist.Valid = artist, true
		}
		if title != "" {
			track.Title.String, track.Title.Valid = title, true
		}
		if entry.EndTime != nil {
			track.EndTime.Float64, track.EndTime.Valid = *entry.EndTime, true
		}

		if match, ok := byKey[compatibilityKey(artist, title)]; ok {
			track.YouTubeStatus = normalizeStatus(match.Status)
			if match.Reason != "" {
				track.Reason.String, track.Reason.Valid = match.Reason, true
			}
		}

		tracks = append(tracks, track)
	}

	return tracks
}

func normalizeStatus(status string) string {
	switch status {
	case models.YouTubeAvailable, models.YouTubeRestricted, models.YouTubeBlocked:
		return status
	default:
		return models.YouTubeUnknown
	}
}

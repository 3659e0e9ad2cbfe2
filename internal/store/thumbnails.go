package store

import (
	"fmt"

	"djset-backend/internal/models"
)

func (d *DatabaseClient) CreateThumbnail(thumbnail *models.Thumbnail) error {
	err := d.db.QueryRow(`
		INSERT INTO thumbnails (project_id, file_path, ts, is_selected)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at
	`, thumbnail.ProjectID, thumbnail.FilePath, thumbnail.Timestamp,
	).Scan(&thumbnail.ID, &thumbnail.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListThumbnails(projectID int64) ([]models.Thumbnail, error) {
	rows, err := d.db.Query(`
		SELECT id, project_id, file_path, ts, is_selected, created_at
		FROM thumbnails
		WHERE project_id = $1
		ORDER BY ts ASC NULLS LAST, id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list thumbnails: %w", err)
	}
	defer rows.Close()

	var thumbnails []models.Thumbnail
	for rows.Next() {
		var t models.Thumbnail
		err := rows.Scan(&t.ID, &t.ProjectID, &t.FilePath, &t.Timestamp, &t.IsSelected, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thumbnail: %w", err)
		}
		thumbnails = append(thumbnails, t)
	}

	return thumbnails, rows.Err()
}

// SelectThumbnail makes thumbnailID the only selected thumbnail of the
// project. The clear and the set happen in a single conditional update, so
// concurrent select requests cannot leave two thumbnails selected.
func (d *DatabaseClient) SelectThumbnail(projectID, thumbnailID int64) error {
	var exists bool
	err := d.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM thumbnails WHERE id = $1 AND project_id = $2
		)
	`, thumbnailID, projectID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up thumbnail: %w", err)
	}
	if !exists {
		return fmt.Errorf("thumbnail: %w", ErrNotFound)
	}

	_, err = d.db.Exec(`
		UPDATE thumbnails
		SET is_selected = (id = $1)
		WHERE project_id = $2
	`, thumbnailID, projectID)
	if err != nil {
		return fmt.Errorf("failed to select thumbnail: %w", err)
	}
	return nil
}

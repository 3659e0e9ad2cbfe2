package store

import (
	"database/sql"
	"fmt"

	"djset-backend/internal/models"
)

const projectColumns = "id, name, description, original_path, processed_path, status, created_at, updated_at"

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.OriginalPath,
		&p.ProcessedPath, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DatabaseClient) CreateProject(name, description, originalPath string) (*models.Project, error) {
	desc := sql.NullString{String: description, Valid: description != ""}

	project, err := scanProject(d.db.QueryRow(`
		INSERT INTO projects (name, description, original_path, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+projectColumns+`
	`, name, desc, originalPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

func (d *DatabaseClient) GetProject(projectID int64) (*models.Project, error) {
	project, err := scanProject(d.db.QueryRow(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1
	`, projectID))
	if err != nil {
		return nil, wrapNoRows(err, "project")
	}

	return project, nil
}

func (d *DatabaseClient) ListProjects() ([]models.Project, error) {
	rows, err := d.db.Query(`
		SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	return projects, rows.Err()
}

// MarkProjectProcessing claims the project for a pipeline run. The claim is
// a single conditional update so two concurrent triggers cannot both win;
// it returns false when the project is mid-run or already completed.
func (d *DatabaseClient) MarkProjectProcessing(projectID int64) (bool, error) {
	result, err := d.db.Exec(`
		UPDATE projects
		SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'failed')
	`, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to mark project processing: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ClearRunResults removes every job, track and thumbnail row left behind by
// an earlier pipeline run, so a retried project starts from a clean slate.
func (d *DatabaseClient) ClearRunResults(projectID int64) error {
	for _, table := range []string{"processing_jobs", "tracks", "thumbnails"} {
		if _, err := d.db.Exec(`DELETE FROM `+table+` WHERE project_id = $1`, projectID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func (d *DatabaseClient) UpdateProjectStatus(projectID int64, status string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, projectID)
	return err
}

// SetProjectProcessed records the edited-video output and marks the project
// completed in one write.
func (d *DatabaseClient) SetProjectProcessed(projectID int64, processedPath string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET processed_path = $1, status = 'completed', updated_at = NOW()
		WHERE id = $2
	`, processedPath, projectID)
	return err
}

func (d *DatabaseClient) DeleteProject(projectID int64) error {
	result, err := d.db.Exec(`
		DELETE FROM projects
		WHERE id = $1
	`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("project: %w", ErrNotFound)
	}
	return nil
}

package store

import (
	"fmt"

	"djset-backend/internal/models"
)

const jobColumns = "id, project_id, job_type, status, result, error_message, created_at, updated_at"

func scanJob(row interface{ Scan(...any) error }) (*models.ProcessingJob, error) {
	var j models.ProcessingJob
	err := row.Scan(
		&j.ID, &j.ProjectID, &j.JobType, &j.Status,
		&j.Result, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (d *DatabaseClient) CreateJob(projectID int64, jobType string) (*models.ProcessingJob, error) {
	job, err := scanJob(d.db.QueryRow(`
		INSERT INTO processing_jobs (project_id, job_type, status)
		VALUES ($1, $2, 'pending')
		RETURNING `+jobColumns+`
	`, projectID, jobType))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return job, nil
}

// ListJobs returns a project's jobs in creation order, which matches the
// fixed pipeline stage order.
func (d *DatabaseClient) ListJobs(projectID int64) ([]models.ProcessingJob, error) {
	rows, err := d.db.Query(`
		SELECT `+jobColumns+`
		FROM processing_jobs
		WHERE project_id = $1
		ORDER BY id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.ProcessingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

func (d *DatabaseClient) UpdateJobStatus(jobID int64, status string) error {
	_, err := d.db.Exec(`
		UPDATE processing_jobs
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, jobID)
	return err
}

func (d *DatabaseClient) CompleteJob(jobID int64, result string) error {
	_, err := d.db.Exec(`
		UPDATE processing_jobs
		SET status = 'completed', result = $1, updated_at = NOW()
		WHERE id = $2
	`, result, jobID)
	return err
}

// FailUnresolvedJobs marks every job of the project still pending or
// processing as failed. Jobs that already completed keep their status.
func (d *DatabaseClient) FailUnresolvedJobs(projectID int64, errorMessage string) error {
	_, err := d.db.Exec(`
		UPDATE processing_jobs
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE project_id = $2 AND status IN ('pending', 'processing')
	`, errorMessage, projectID)
	return err
}

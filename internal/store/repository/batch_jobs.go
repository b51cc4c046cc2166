package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fortuna/courtside/internal/store"
)

// BatchJobRepository persists batch run progress.
type BatchJobRepository struct {
	db *store.Database
}

// NewBatchJobRepository constructs a BatchJobRepository.
func NewBatchJobRepository(db *store.Database) *BatchJobRepository {
	return &BatchJobRepository{db: db}
}

const batchJobColumns = `job_id, league, game_ids, status, games_total, games_done,
	games_failed, failed_game_ids, started_at, completed_at, error_message`

// Create inserts a new job row.
func (r *BatchJobRepository) Create(ctx context.Context, job *store.BatchJob) error {
	query := `
		INSERT INTO batch_jobs (job_id, league, game_ids, status, games_total, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.DB().ExecContext(ctx, query,
		job.JobID, job.League, pq.Array(job.GameIDs), job.Status, job.GamesTotal, job.StartedAt)
	if err != nil {
		return fmt.Errorf("insert batch job: %w", err)
	}
	return nil
}

// Save writes the job's counters, status and completion fields.
func (r *BatchJobRepository) Save(ctx context.Context, job *store.BatchJob) error {
	query := `
		UPDATE batch_jobs
		SET status = $2,
			games_done = $3,
			games_failed = $4,
			failed_game_ids = $5,
			completed_at = $6,
			error_message = $7
		WHERE job_id = $1
	`
	var completed sql.NullTime
	if job.CompletedAt != nil {
		completed = sql.NullTime{Time: *job.CompletedAt, Valid: true}
	}

	_, err := r.db.DB().ExecContext(ctx, query,
		job.JobID, job.Status, job.GamesDone, job.GamesFailed,
		pq.Array(job.FailedGameIDs), completed, job.ErrorMessage)
	if err != nil {
		return fmt.Errorf("update batch job: %w", err)
	}
	return nil
}

// Get returns one job or store.ErrNotFound.
func (r *BatchJobRepository) Get(ctx context.Context, jobID string) (*store.BatchJob, error) {
	query := `SELECT ` + batchJobColumns + ` FROM batch_jobs WHERE job_id = $1`

	job, err := scanBatchJob(r.db.DB().QueryRowContext(ctx, query, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch job %s: %w", jobID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch job: %w", err)
	}
	return job, nil
}

// ListRecent returns the most recently started jobs.
func (r *BatchJobRepository) ListRecent(ctx context.Context, limit int) ([]*store.BatchJob, error) {
	query := `SELECT ` + batchJobColumns + ` FROM batch_jobs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list batch jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*store.BatchJob
	for rows.Next() {
		job, err := scanBatchJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanBatchJob(row scanner) (*store.BatchJob, error) {
	job := &store.BatchJob{}
	var gameIDs, failed pq.StringArray
	var completed sql.NullTime

	err := row.Scan(
		&job.JobID,
		&job.League,
		&gameIDs,
		&job.Status,
		&job.GamesTotal,
		&job.GamesDone,
		&job.GamesFailed,
		&failed,
		&job.StartedAt,
		&completed,
		&job.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	job.GameIDs = []string(gameIDs)
	job.FailedGameIDs = []string(failed)
	if completed.Valid {
		t := completed.Time
		job.CompletedAt = &t
	}
	return job, nil
}

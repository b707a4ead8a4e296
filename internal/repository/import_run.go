package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zipcaster/internal/db"
	"zipcaster/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ImportRun is the stored summary of importing one mode.
type ImportRun struct {
	ID         string      `json:"id"`
	Mode       domain.Mode `json:"mode"`
	Status     string      `json:"status"`
	Fetched    int         `json:"fetched"`
	Imported   int         `json:"imported"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
	Warnings   int         `json:"warnings"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

type ImportRunRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewImportRunRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ImportRunRepository {
	return &ImportRunRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Start records a running import for mode and returns its id.
func (r *ImportRunRepository) Start(ctx context.Context, mode domain.Mode) (*ImportRun, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	run := &ImportRun{
		ID:        id,
		Mode:      mode,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	err = r.queries.CreateImportRun(ctx, db.CreateImportRunParams{
		ID:        run.ID,
		Mode:      string(run.Mode),
		Status:    run.Status,
		StartedAt: run.StartedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create import run: %w", err)
	}
	return run, nil
}

// Finish stores the final counters of run. A non-nil runErr marks the run
// failed.
func (r *ImportRunRepository) Finish(ctx context.Context, run *ImportRun, runErr error) error {
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Status = RunStatusSucceeded

	var errText *string
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
		errText = &run.Error
	}

	err := r.queries.FinishImportRun(ctx, db.FinishImportRunParams{
		Status:     run.Status,
		Fetched:    int64(run.Fetched),
		Imported:   int64(run.Imported),
		Skipped:    int64(run.Skipped),
		Failed:     int64(run.Failed),
		Warnings:   int64(run.Warnings),
		Error:      errText,
		FinishedAt: finished,
		ID:         run.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to finish import run %s: %w", run.ID, err)
	}
	return nil
}

func (r *ImportRunRepository) List(ctx context.Context, limit int) ([]ImportRun, error) {
	rows, err := r.queries.ListImportRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	runs := make([]ImportRun, len(rows))
	for i, row := range rows {
		runs[i] = ImportRun{
			ID:         row.ID,
			Mode:       domain.Mode(row.Mode),
			Status:     row.Status,
			Fetched:    int(row.Fetched),
			Imported:   int(row.Imported),
			Skipped:    int(row.Skipped),
			Failed:     int(row.Failed),
			Warnings:   int(row.Warnings),
			StartedAt:  row.StartedAt,
			FinishedAt: row.FinishedAt,
		}
		if row.Error != nil {
			runs[i].Error = *row.Error
		}
	}
	return runs, nil
}

package db

import (
	"context"
	"time"
)

const createImportRun = `
INSERT INTO import_runs (id, mode, status, started_at)
VALUES (?, ?, ?, ?)
`

type CreateImportRunParams struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

func (q *Queries) CreateImportRun(ctx context.Context, arg CreateImportRunParams) error {
	_, err := q.db.ExecContext(ctx, createImportRun,
		arg.ID,
		arg.Mode,
		arg.Status,
		arg.StartedAt,
	)
	return err
}

const finishImportRun = `
UPDATE import_runs
SET status = ?, fetched = ?, imported = ?, skipped = ?, failed = ?, warnings = ?, error = ?, finished_at = ?
WHERE id = ?
`

type FinishImportRunParams struct {
	Status     string    `json:"status"`
	Fetched    int64     `json:"fetched"`
	Imported   int64     `json:"imported"`
	Skipped    int64     `json:"skipped"`
	Failed     int64     `json:"failed"`
	Warnings   int64     `json:"warnings"`
	Error      *string   `json:"error"`
	FinishedAt time.Time `json:"finished_at"`
	ID         string    `json:"id"`
}

func (q *Queries) FinishImportRun(ctx context.Context, arg FinishImportRunParams) error {
	_, err := q.db.ExecContext(ctx, finishImportRun,
		arg.Status,
		arg.Fetched,
		arg.Imported,
		arg.Skipped,
		arg.Failed,
		arg.Warnings,
		arg.Error,
		arg.FinishedAt,
		arg.ID,
	)
	return err
}

const getImportRun = `
SELECT id, mode, status, fetched, imported, skipped, failed, warnings, error, started_at, finished_at
FROM import_runs
WHERE id = ?
`

func (q *Queries) GetImportRun(ctx context.Context, id string) (ImportRun, error) {
	row := q.db.QueryRowContext(ctx, getImportRun, id)
	var i ImportRun
	err := row.Scan(
		&i.ID,
		&i.Mode,
		&i.Status,
		&i.Fetched,
		&i.Imported,
		&i.Skipped,
		&i.Failed,
		&i.Warnings,
		&i.Error,
		&i.StartedAt,
		&i.FinishedAt,
	)
	return i, err
}

const listImportRuns = `
SELECT id, mode, status, fetched, imported, skipped, failed, warnings, error, started_at, finished_at
FROM import_runs
ORDER BY started_at DESC
LIMIT ?
`

func (q *Queries) ListImportRuns(ctx context.Context, limit int64) ([]ImportRun, error) {
	rows, err := q.db.QueryContext(ctx, listImportRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportRun
	for rows.Next() {
		var i ImportRun
		if err := rows.Scan(
			&i.ID,
			&i.Mode,
			&i.Status,
			&i.Fetched,
			&i.Imported,
			&i.Skipped,
			&i.Failed,
			&i.Warnings,
			&i.Error,
			&i.StartedAt,
			&i.FinishedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

package db

import (
	"context"
	"time"
)

const upsertBattle = `
INSERT INTO battles (
    id, mode, rule, stage, result, start_time, duration_seconds, match_power, record, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    mode = excluded.mode,
    rule = excluded.rule,
    stage = excluded.stage,
    result = excluded.result,
    start_time = excluded.start_time,
    duration_seconds = excluded.duration_seconds,
    match_power = excluded.match_power,
    record = excluded.record,
    updated_at = excluded.updated_at
`

type UpsertBattleParams struct {
	ID              string    `json:"id"`
	Mode            string    `json:"mode"`
	Rule            string    `json:"rule"`
	Stage           string    `json:"stage"`
	Result          string    `json:"result"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	MatchPower      *float64  `json:"match_power"`
	Record          string    `json:"record"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (q *Queries) UpsertBattle(ctx context.Context, arg UpsertBattleParams) error {
	_, err := q.db.ExecContext(ctx, upsertBattle,
		arg.ID,
		arg.Mode,
		arg.Rule,
		arg.Stage,
		arg.Result,
		arg.StartTime,
		arg.DurationSeconds,
		arg.MatchPower,
		arg.Record,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getBattle = `
SELECT id, mode, rule, stage, result, start_time, duration_seconds, match_power, record, created_at, updated_at
FROM battles
WHERE id = ?
`

func (q *Queries) GetBattle(ctx context.Context, id string) (Battle, error) {
	row := q.db.QueryRowContext(ctx, getBattle, id)
	var i Battle
	err := row.Scan(
		&i.ID,
		&i.Mode,
		&i.Rule,
		&i.Stage,
		&i.Result,
		&i.StartTime,
		&i.DurationSeconds,
		&i.MatchPower,
		&i.Record,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBattles = `
SELECT id, mode, rule, stage, result, start_time, duration_seconds, match_power, record, created_at, updated_at
FROM battles
ORDER BY start_time DESC, id
LIMIT ?
`

func (q *Queries) ListBattles(ctx context.Context, limit int64) ([]Battle, error) {
	rows, err := q.db.QueryContext(ctx, listBattles, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Battle
	for rows.Next() {
		var i Battle
		if err := rows.Scan(
			&i.ID,
			&i.Mode,
			&i.Rule,
			&i.Stage,
			&i.Result,
			&i.StartTime,
			&i.DurationSeconds,
			&i.MatchPower,
			&i.Record,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listBattleIDs = `
SELECT id FROM battles
`

func (q *Queries) ListBattleIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listBattleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countBattlesByMode = `
SELECT COUNT(*) FROM battles WHERE mode = ?
`

func (q *Queries) CountBattlesByMode(ctx context.Context, mode string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countBattlesByMode, mode)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const upsertSeriesMetadata = `
INSERT INTO series_metadata (
    id, battle_id, kind, rank_before, rank_after, x_power_after, series_win_count, series_lose_count, metadata, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (battle_id) DO UPDATE SET
    kind = excluded.kind,
    rank_before = excluded.rank_before,
    rank_after = excluded.rank_after,
    x_power_after = excluded.x_power_after,
    series_win_count = excluded.series_win_count,
    series_lose_count = excluded.series_lose_count,
    metadata = excluded.metadata
`

type UpsertSeriesMetadataParams struct {
	ID              string    `json:"id"`
	BattleID        string    `json:"battle_id"`
	Kind            string    `json:"kind"`
	RankBefore      *string   `json:"rank_before"`
	RankAfter       *string   `json:"rank_after"`
	XPowerAfter     *float64  `json:"x_power_after"`
	SeriesWinCount  *int64    `json:"series_win_count"`
	SeriesLoseCount *int64    `json:"series_lose_count"`
	Metadata        string    `json:"metadata"`
	CreatedAt       time.Time `json:"created_at"`
}

func (q *Queries) UpsertSeriesMetadata(ctx context.Context, arg UpsertSeriesMetadataParams) error {
	_, err := q.db.ExecContext(ctx, upsertSeriesMetadata,
		arg.ID,
		arg.BattleID,
		arg.Kind,
		arg.RankBefore,
		arg.RankAfter,
		arg.XPowerAfter,
		arg.SeriesWinCount,
		arg.SeriesLoseCount,
		arg.Metadata,
		arg.CreatedAt,
	)
	return err
}

const deleteSeriesMetadata = `
DELETE FROM series_metadata WHERE battle_id = ?
`

func (q *Queries) DeleteSeriesMetadata(ctx context.Context, battleID string) error {
	_, err := q.db.ExecContext(ctx, deleteSeriesMetadata, battleID)
	return err
}

const getSeriesMetadataByBattle = `
SELECT id, battle_id, kind, rank_before, rank_after, x_power_after, series_win_count, series_lose_count, metadata, created_at
FROM series_metadata
WHERE battle_id = ?
`

func (q *Queries) GetSeriesMetadataByBattle(ctx context.Context, battleID string) (SeriesMetadatum, error) {
	row := q.db.QueryRowContext(ctx, getSeriesMetadataByBattle, battleID)
	var i SeriesMetadatum
	err := row.Scan(
		&i.ID,
		&i.BattleID,
		&i.Kind,
		&i.RankBefore,
		&i.RankAfter,
		&i.XPowerAfter,
		&i.SeriesWinCount,
		&i.SeriesLoseCount,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"zipcaster/internal/constants"
	"zipcaster/internal/db"
	"zipcaster/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrBattleNotFound = errors.New("battle not found")

type BattleRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewBattleRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *BattleRepository {
	return &BattleRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// UpsertBatch stores records and their series metadata in one transaction.
// Re-importing a battle replaces the stored copy.
func (r *BattleRepository) UpsertBatch(ctx context.Context, records []domain.BattleRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := time.Now().UTC()

	for i := 0; i < len(records); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(records))

		for _, rec := range records[i:end] {
			if err := upsertRecord(ctx, qtx, rec, now); err != nil {
				return err
			}
		}
		r.logger.Debug().Int("count", end-i).Msg("battle batch written")
	}

	return tx.Commit()
}

func upsertRecord(ctx context.Context, q *db.Queries, rec domain.BattleRecord, now time.Time) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode battle %s: %w", rec.ID, err)
	}

	err = q.UpsertBattle(ctx, db.UpsertBattleParams{
		ID:              rec.ID,
		Mode:            string(rec.Mode),
		Rule:            string(rec.Rule),
		Stage:           rec.Stage,
		Result:          string(rec.Result),
		StartTime:       rec.StartTime.UTC(),
		DurationSeconds: int64(rec.Duration / time.Second),
		MatchPower:      rec.MatchPower,
		Record:          string(raw),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert battle %s: %w", rec.ID, err)
	}

	if rec.SeriesMetadata == nil {
		if err := q.DeleteSeriesMetadata(ctx, rec.ID); err != nil {
			return fmt.Errorf("failed to clear series metadata for %s: %w", rec.ID, err)
		}
		return nil
	}

	params, err := seriesMetadataParams(rec.ID, rec.SeriesMetadata, now)
	if err != nil {
		return err
	}
	if err := q.UpsertSeriesMetadata(ctx, params); err != nil {
		return fmt.Errorf("failed to upsert series metadata for %s: %w", rec.ID, err)
	}
	return nil
}

func seriesMetadataParams(battleID string, m domain.ModeMetadata, now time.Time) (db.UpsertSeriesMetadataParams, error) {
	id, err := gonanoid.New()
	if err != nil {
		return db.UpsertSeriesMetadataParams{}, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return db.UpsertSeriesMetadataParams{}, fmt.Errorf("failed to encode series metadata for %s: %w", battleID, err)
	}

	p := db.UpsertSeriesMetadataParams{
		ID:        id,
		BattleID:  battleID,
		Kind:      string(m.Kind()),
		Metadata:  string(raw),
		CreatedAt: now,
	}
	switch v := m.(type) {
	case *domain.AnarchySeriesMetadata:
		p.RankBefore = rankString(v.RankBefore)
		p.RankAfter = rankString(v.RankAfter)
		p.SeriesWinCount = int64Ptr(v.SeriesWinCount)
		p.SeriesLoseCount = int64Ptr(v.SeriesLoseCount)
	case *domain.AnarchyOpenMetadata:
		p.RankBefore = rankString(v.RankBefore)
		p.RankAfter = rankString(v.RankAfter)
	case *domain.XMetadata:
		p.XPowerAfter = v.XPowerAfter
		p.SeriesWinCount = int64Ptr(v.SeriesWinCount)
		p.SeriesLoseCount = int64Ptr(v.SeriesLoseCount)
	}
	return p, nil
}

func (r *BattleRepository) Get(ctx context.Context, id string) (*domain.BattleRecord, error) {
	row, err := r.queries.GetBattle(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBattleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get battle %s: %w", id, err)
	}
	return decodeBattle(row)
}

// List returns the most recent battles, newest first.
func (r *BattleRepository) List(ctx context.Context, limit int) ([]domain.BattleRecord, error) {
	rows, err := r.queries.ListBattles(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list battles: %w", err)
	}

	records := make([]domain.BattleRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeBattle(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// SeenIDs returns the ids of every stored battle.
func (r *BattleRepository) SeenIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := r.queries.ListBattleIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list battle ids: %w", err)
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

func (r *BattleRepository) CountByMode(ctx context.Context, mode domain.Mode) (int, error) {
	n, err := r.queries.CountBattlesByMode(ctx, string(mode))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s battles: %w", mode, err)
	}
	return int(n), nil
}

func decodeBattle(row db.Battle) (*domain.BattleRecord, error) {
	var rec domain.BattleRecord
	if err := json.Unmarshal([]byte(row.Record), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode stored battle %s: %w", row.ID, err)
	}
	return &rec, nil
}

func rankString(r domain.Rank) *string {
	s := r.String()
	return &s
}

func int64Ptr(v int) *int64 {
	n := int64(v)
	return &n
}

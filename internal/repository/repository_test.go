package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zipcaster/internal/database"
	"zipcaster/internal/db"
	"zipcaster/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*BattleRepository, *ImportRunRepository, *db.Queries) {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "zipcaster.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB)
	return NewBattleRepository(sqlDB, queries, zerolog.Nop()),
		NewImportRunRepository(sqlDB, queries, zerolog.Nop()),
		queries
}

func testRecord(id string, start time.Time, meta domain.ModeMetadata) domain.BattleRecord {
	power := 1850.5
	return domain.BattleRecord{
		ID:        id,
		Mode:      domain.ModeAnarchySeries,
		Rule:      domain.RuleSplatZones,
		Stage:     "12",
		Result:    domain.ResultWin,
		StartTime: start,
		Duration:  3 * time.Minute,
		Teams: []domain.Team{
			{Color: "#7f33ccff", Order: 1, Players: []domain.Player{{Name: "me", Me: true}}},
			{Color: "#33cc7fff", Order: 2, Players: []domain.Player{{Name: "them"}}},
		},
		Awards:         []domain.Award{{Name: "#1 Splatter", Rank: domain.AwardGold}},
		SeriesMetadata: meta,
		MatchPower:     &power,
	}
}

func TestBattleRepository_UpsertAndGet(t *testing.T) {
	battles, _, queries := openTestDB(t)
	ctx := context.Background()

	sub := 12
	meta := &domain.AnarchySeriesMetadata{
		RankBefore:      domain.Rank{Letter: domain.RankSPlus, SubRank: &sub},
		RankAfter:       domain.Rank{Letter: domain.RankSPlus, SubRank: &sub},
		SeriesWinCount:  1,
		SeriesLoseCount: 0,
	}
	start := time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC)
	rec := testRecord("b-1", start, meta)

	require.NoError(t, battles.UpsertBatch(ctx, []domain.BattleRecord{rec}))

	got, err := battles.Get(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Mode, got.Mode)
	assert.True(t, rec.StartTime.Equal(got.StartTime))
	assert.Equal(t, rec.Duration, got.Duration)
	assert.Equal(t, meta, got.SeriesMetadata)

	stored, err := queries.GetSeriesMetadataByBattle(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, string(domain.MetadataAnarchySeries), stored.Kind)
	require.NotNil(t, stored.RankBefore)
	assert.Equal(t, "S+12", *stored.RankBefore)
	require.NotNil(t, stored.SeriesWinCount)
	assert.EqualValues(t, 1, *stored.SeriesWinCount)
	assert.Len(t, stored.ID, 21)
}

func TestBattleRepository_ReimportReplaces(t *testing.T) {
	battles, _, queries := openTestDB(t)
	ctx := context.Background()
	start := time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC)

	first := testRecord("b-1", start, &domain.XMetadata{SeriesWinCount: 2})
	require.NoError(t, battles.UpsertBatch(ctx, []domain.BattleRecord{first}))

	second := testRecord("b-1", start, nil)
	second.Result = domain.ResultLose
	require.NoError(t, battles.UpsertBatch(ctx, []domain.BattleRecord{second}))

	got, err := battles.Get(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultLose, got.Result)
	assert.Nil(t, got.SeriesMetadata)

	_, err = queries.GetSeriesMetadataByBattle(ctx, "b-1")
	assert.Error(t, err)

	n, err := battles.CountByMode(ctx, domain.ModeAnarchySeries)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBattleRepository_ListAndSeen(t *testing.T) {
	battles, _, _ := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2023, 3, 4, 0, 0, 0, 0, time.UTC)

	var records []domain.BattleRecord
	for i, id := range []string{"b-1", "b-2", "b-3"} {
		records = append(records, testRecord(id, base.Add(time.Duration(i)*time.Hour), nil))
	}
	require.NoError(t, battles.UpsertBatch(ctx, records))

	list, err := battles.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b-3", list[0].ID)
	assert.Equal(t, "b-2", list[1].ID)

	seen, err := battles.SeenIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.Contains(t, seen, "b-1")
}

func TestBattleRepository_GetMissing(t *testing.T) {
	battles, _, _ := openTestDB(t)

	_, err := battles.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrBattleNotFound))
}

func TestBattleRepository_EmptyBatch(t *testing.T) {
	battles, _, _ := openTestDB(t)
	assert.NoError(t, battles.UpsertBatch(context.Background(), nil))
}

func TestImportRunRepository_Lifecycle(t *testing.T) {
	_, runs, _ := openTestDB(t)
	ctx := context.Background()

	ok, err := runs.Start(ctx, domain.ModeXBattle)
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, ok.Status)
	ok.Fetched, ok.Imported, ok.Skipped = 5, 4, 1
	require.NoError(t, runs.Finish(ctx, ok, nil))

	bad, err := runs.Start(ctx, domain.ModeTurfWar)
	require.NoError(t, err)
	require.NoError(t, runs.Finish(ctx, bad, errors.New("source unavailable")))

	list, err := runs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]ImportRun{}
	for _, r := range list {
		byID[r.ID] = r
	}

	assert.Equal(t, RunStatusSucceeded, byID[ok.ID].Status)
	assert.Equal(t, 4, byID[ok.ID].Imported)
	assert.Equal(t, 1, byID[ok.ID].Skipped)
	assert.NotNil(t, byID[ok.ID].FinishedAt)
	assert.Empty(t, byID[ok.ID].Error)

	assert.Equal(t, RunStatusFailed, byID[bad.ID].Status)
	assert.Equal(t, "source unavailable", byID[bad.ID].Error)
}

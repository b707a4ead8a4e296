package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"zipcaster/internal/codec"
	"zipcaster/internal/config"
	"zipcaster/internal/database"
	"zipcaster/internal/db"
	"zipcaster/internal/domain"
	"zipcaster/internal/export"
	"zipcaster/internal/repository"
	"zipcaster/internal/source"
	"zipcaster/internal/transform"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recordingExporter struct {
	mu      sync.Mutex
	name    string
	err     error
	batches [][]domain.BattleRecord
}

func (e *recordingExporter) Name() string { return e.name }

func (e *recordingExporter) Export(_ context.Context, records []domain.BattleRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = append(e.batches, records)
	return e.err
}

type fixture struct {
	battles *repository.BattleRepository
	runs    *repository.ImportRunRepository
	engine  *transform.Engine
	rawDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "service.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	queries := db.New(sqlDB)

	table, err := codec.DefaultAbilityTable()
	require.NoError(t, err)

	rawDir := t.TempDir()
	modeDir := filepath.Join(rawDir, string(domain.ModeTurfWar))
	require.NoError(t, os.MkdirAll(modeDir, 0o755))
	for _, name := range []string{source.OverviewFile, source.DetailedFile} {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(modeDir, name), data, 0o644))
	}

	return &fixture{
		battles: repository.NewBattleRepository(sqlDB, queries, zerolog.Nop()),
		runs:    repository.NewImportRunRepository(sqlDB, queries, zerolog.Nop()),
		engine:  transform.NewEngine(transform.NewAssembler(codec.NewAbilityResolver(table))),
		rawDir:  rawDir,
	}
}

func (f *fixture) importService(cfg *config.Config, exporters ...export.Exporter) *ImportService {
	return NewImportService(source.NewDir(f.rawDir, zerolog.Nop()), f.engine, f.battles, f.runs, exporters, cfg, zerolog.Nop())
}

func TestImportService_Run(t *testing.T) {
	f := newFixture(t)
	cfg := &config.Config{Modes: []domain.Mode{domain.ModeTurfWar, domain.ModeXBattle}, Limit: -1}
	rec := &recordingExporter{name: "recording"}
	svc := f.importService(cfg, export.NewSQLiteExporter(f.battles, zerolog.Nop()), rec)

	runs, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)

	turf := runs[0]
	assert.Equal(t, domain.ModeTurfWar, turf.Mode)
	assert.Equal(t, repository.RunStatusSucceeded, turf.Status)
	assert.Equal(t, 2, turf.Fetched)
	assert.Equal(t, 2, turf.Imported)
	assert.Equal(t, 0, turf.Failed)

	x := runs[1]
	assert.Equal(t, 0, x.Fetched)
	assert.Equal(t, repository.RunStatusSucceeded, x.Status)

	require.Len(t, rec.batches, 1)
	assert.Equal(t, "u-abc:RECENT:20230304T060000_b2", rec.batches[0][0].ID)

	seen, err := f.battles.SeenIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 2)

	// A second run finds nothing new.
	runs, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, runs[0].Fetched)
	assert.Equal(t, 2, runs[0].Skipped)
	assert.Len(t, rec.batches, 1)
}

func TestImportService_MultiModeWritesOneFile(t *testing.T) {
	f := newFixture(t)

	// Move the second battle into the private mode directory.
	turfDir := filepath.Join(f.rawDir, string(domain.ModeTurfWar))
	privateDir := filepath.Join(f.rawDir, string(domain.ModePrivate))
	require.NoError(t, os.MkdirAll(privateDir, 0o755))

	detailed, err := os.ReadFile(filepath.Join("testdata", source.DetailedFile))
	require.NoError(t, err)
	docs := gjson.ParseBytes(detailed).Array()
	require.Len(t, docs, 2)
	require.NoError(t, os.WriteFile(filepath.Join(turfDir, source.DetailedFile), []byte("["+docs[0].Raw+"]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(privateDir, source.DetailedFile), []byte("["+docs[1].Raw+"]"), 0o644))

	outDir := t.TempDir()
	cfg := &config.Config{Modes: []domain.Mode{domain.ModeTurfWar, domain.ModePrivate}, Limit: -1}
	jsonFile := export.NewJSONFileExporter(export.JSONFileOptions{Dir: outDir}, zerolog.Nop())

	runs, err := f.importService(cfg, jsonFile).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 1, runs[0].Imported)
	assert.Equal(t, 1, runs[1].Imported)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	written, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Len(t, gjson.ParseBytes(written).Array(), runs[0].Imported+runs[1].Imported)
}

func TestImportService_ExportFailureOnlyFailsContributingModes(t *testing.T) {
	f := newFixture(t)
	cfg := &config.Config{Modes: []domain.Mode{domain.ModeTurfWar, domain.ModeXBattle}, Limit: -1}
	bad := &recordingExporter{name: "broken", err: errors.New("disk full")}

	runs, err := f.importService(cfg, bad).Run(context.Background())
	require.Error(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, repository.RunStatusFailed, runs[0].Status)
	assert.Equal(t, repository.RunStatusSucceeded, runs[1].Status)
	assert.Len(t, bad.batches, 1)
}

func TestImportService_Limit(t *testing.T) {
	f := newFixture(t)
	cfg := &config.Config{Modes: []domain.Mode{domain.ModeTurfWar}, Limit: 1}
	rec := &recordingExporter{name: "recording"}

	runs, err := f.importService(cfg, rec).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, runs[0].Imported)
	require.Len(t, rec.batches, 1)
	assert.Len(t, rec.batches[0], 1)
}

func TestImportService_ExporterFailure(t *testing.T) {
	f := newFixture(t)
	cfg := &config.Config{Modes: []domain.Mode{domain.ModeTurfWar}, Limit: -1}
	bad := &recordingExporter{name: "broken", err: errors.New("disk full")}

	runs, err := f.importService(cfg, bad).Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	require.Len(t, runs, 1)
	assert.Equal(t, repository.RunStatusFailed, runs[0].Status)

	stored, err := f.runs.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, repository.RunStatusFailed, stored[0].Status)
	assert.Contains(t, stored[0].Error, "disk full")
}

func TestImportService_RecordFailuresAreCounted(t *testing.T) {
	f := newFixture(t)
	modeDir := filepath.Join(f.rawDir, string(domain.ModeTurfWar))
	require.NoError(t, os.WriteFile(filepath.Join(modeDir, source.DetailedFile), []byte(`[{"id":"bm90LWEtYmF0dGxl"}]`), 0o644))

	cfg := &config.Config{Modes: []domain.Mode{domain.ModeTurfWar}, Limit: -1}
	rec := &recordingExporter{name: "recording"}

	runs, err := f.importService(cfg, rec).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 0, runs[0].Imported)
	assert.Empty(t, rec.batches)
}

func TestBattleService(t *testing.T) {
	f := newFixture(t)
	svc := NewBattleService(f.engine, f.battles, f.runs, zerolog.Nop())

	overview, err := os.ReadFile(filepath.Join("testdata", source.OverviewFile))
	require.NoError(t, err)
	payload, err := source.NewDir(f.rawDir, zerolog.Nop()).Fetch(context.Background(), domain.ModeTurfWar, nil, -1)
	require.NoError(t, err)

	res := svc.Transform(overview, payload.Details)
	require.Empty(t, res.Failures)
	require.Len(t, res.Records, 2)

	require.NoError(t, f.battles.UpsertBatch(context.Background(), res.Records))

	list, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := svc.Get(context.Background(), res.Records[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RuleTurfWar, got.Rule)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrBattleNotFound)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ClampLimit(0))
	assert.Equal(t, 50, ClampLimit(-3))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, 500, ClampLimit(10_000))
}

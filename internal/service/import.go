package service

import (
	"context"
	"errors"
	"fmt"

	"zipcaster/internal/config"
	"zipcaster/internal/constants"
	"zipcaster/internal/domain"
	"zipcaster/internal/export"
	"zipcaster/internal/repository"
	"zipcaster/internal/source"
	"zipcaster/internal/transform"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ImportService struct {
	source    source.Source
	engine    *transform.Engine
	battles   *repository.BattleRepository
	runs      *repository.ImportRunRepository
	exporters []export.Exporter
	cfg       *config.Config
	logger    zerolog.Logger
}

func NewImportService(
	src source.Source,
	engine *transform.Engine,
	battles *repository.BattleRepository,
	runs *repository.ImportRunRepository,
	exporters []export.Exporter,
	cfg *config.Config,
	logger zerolog.Logger,
) *ImportService {
	return &ImportService{
		source:    src,
		engine:    engine,
		battles:   battles,
		runs:      runs,
		exporters: exporters,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run imports every configured mode. A failing mode does not stop the others;
// their errors are joined in the result.
func (s *ImportService) Run(ctx context.Context) ([]repository.ImportRun, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ImportTimeout)
	defer cancel()

	return s.runModes(ctx, s.cfg.Modes)
}

// RunMode fetches, normalizes and exports the new battles of one mode.
func (s *ImportService) RunMode(ctx context.Context, mode domain.Mode) (*repository.ImportRun, error) {
	runs, err := s.runModes(ctx, []domain.Mode{mode})
	if len(runs) == 0 {
		return nil, err
	}
	return &runs[0], err
}

type modeImport struct {
	run *repository.ImportRun
	log zerolog.Logger
	err error
}

// runModes fetches and normalizes every mode first and hands the combined
// records to the exporters once, so a file exporter writes a single output
// per run. Per-record failures are logged and counted; only source, storage
// and export errors fail a mode's run.
func (s *ImportService) runModes(ctx context.Context, modes []domain.Mode) ([]repository.ImportRun, error) {
	var errs []error

	seen, err := s.battles.SeenIDs(ctx)
	if err != nil {
		return nil, err
	}

	var pending []modeImport
	var records []domain.BattleRecord
	for _, mode := range modes {
		run, err := s.runs.Start(ctx, mode)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mode, err))
			continue
		}

		log := s.logger.With().Str("mode", string(mode)).Str("run_id", run.ID).Logger()
		log.Info().Msg("import started")

		recs, err := s.importMode(ctx, mode, run, seen, log)
		for _, rec := range recs {
			seen[rec.ID] = struct{}{}
		}
		records = append(records, recs...)
		pending = append(pending, modeImport{run: run, log: log, err: err})
	}

	var exportErr error
	if len(records) > 0 {
		exportErr = s.export(ctx, records, s.logger)
	}

	runs := make([]repository.ImportRun, 0, len(pending))
	for _, p := range pending {
		runErr := p.err
		if runErr == nil && p.run.Imported > 0 {
			runErr = exportErr
		}
		if err := s.runs.Finish(ctx, p.run, runErr); err != nil {
			p.log.Error().Err(err).Msg("failed to record import run")
			if runErr == nil {
				runErr = err
			}
		}
		runs = append(runs, *p.run)

		if runErr != nil {
			p.log.Error().Err(runErr).Msg("import failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.run.Mode, runErr))
			continue
		}
		p.log.Info().
			Int("fetched", p.run.Fetched).
			Int("imported", p.run.Imported).
			Int("skipped", p.run.Skipped).
			Int("failed", p.run.Failed).
			Int("warnings", p.run.Warnings).
			Msg("import completed")
	}
	return runs, errors.Join(errs...)
}

func (s *ImportService) importMode(ctx context.Context, mode domain.Mode, run *repository.ImportRun, seen map[string]struct{}, log zerolog.Logger) ([]domain.BattleRecord, error) {
	srcCtx, cancel := context.WithTimeout(ctx, constants.SourceTimeout)
	payload, err := s.source.Fetch(srcCtx, mode, seen, s.cfg.Limit)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raw battles: %w", err)
	}

	run.Fetched = len(payload.Details)
	run.Skipped = payload.Skipped

	result := s.engine.Transform(payload.Overview, payload.Details)
	run.Imported = len(result.Records)
	run.Failed = len(result.Failures)
	run.Warnings = len(result.Warnings)

	for _, f := range result.Failures {
		logFailure(log.Error(), f).Msg("battle not imported")
	}
	for _, w := range result.Warnings {
		logFailure(log.Warn(), w).Msg("battle imported with warning")
	}
	return result.Records, nil
}

// export hands the records to every exporter concurrently.
func (s *ImportService) export(ctx context.Context, records []domain.BattleRecord, log zerolog.Logger) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, e := range s.exporters {
		g.Go(func() error {
			if err := e.Export(gCtx, records); err != nil {
				log.Error().Err(err).Str("exporter", e.Name()).Msg("export failed")
				return fmt.Errorf("%s exporter: %w", e.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func logFailure(ev *zerolog.Event, err error) *zerolog.Event {
	var recErr *transform.RecordError
	var groupErr *transform.GroupError
	switch {
	case errors.As(err, &recErr):
		ev = ev.Int("detail_index", recErr.Index)
		if recErr.BattleID != "" {
			ev = ev.Str("battle_id", recErr.BattleID)
		}
	case errors.As(err, &groupErr):
		ev = ev.Int("group_index", groupErr.Index)
	}
	return ev.Err(err)
}

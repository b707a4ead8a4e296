package export

import (
	"context"
	"fmt"

	"zipcaster/internal/config"
	"zipcaster/internal/domain"
	"zipcaster/internal/repository"

	"github.com/rs/zerolog"
)

type SQLiteExporter struct {
	battles *repository.BattleRepository
	logger  zerolog.Logger
}

func NewSQLiteExporter(battles *repository.BattleRepository, logger zerolog.Logger) *SQLiteExporter {
	return &SQLiteExporter{battles: battles, logger: logger}
}

func (e *SQLiteExporter) Name() string { return config.ExporterSQLite }

func (e *SQLiteExporter) Export(ctx context.Context, records []domain.BattleRecord) error {
	if err := e.battles.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("failed to store battles: %w", err)
	}
	e.logger.Info().Str("exporter", e.Name()).Int("count", len(records)).Msg("battles stored")
	return nil
}

package export

import (
	"context"
	"fmt"
	"time"

	"zipcaster/internal/api"
	"zipcaster/internal/config"
	"zipcaster/internal/constants"
	"zipcaster/internal/domain"
	"zipcaster/internal/repository"

	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"
)

// Exporter delivers normalized records somewhere. Implementations tolerate
// records they have already seen.
type Exporter interface {
	Name() string
	Export(ctx context.Context, records []domain.BattleRecord) error
}

// stamp serializes rec and records when and by whom it was exported.
func stamp(rec domain.BattleRecord, exporter string, at time.Time) ([]byte, error) {
	raw, err := rec.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode battle %s: %w", rec.ID, err)
	}
	raw, err = sjson.SetBytes(raw, "exported_at", at.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to stamp battle %s: %w", rec.ID, err)
	}
	raw, err = sjson.SetBytes(raw, "exporter", constants.AppName+"/"+exporter)
	if err != nil {
		return nil, fmt.Errorf("failed to stamp battle %s: %w", rec.ID, err)
	}
	return raw, nil
}

// New builds the exporters named in cfg, in configuration order.
func New(cfg *config.Config, battles *repository.BattleRepository, logger zerolog.Logger) []Exporter {
	exporters := make([]Exporter, 0, len(cfg.Exporters))
	for _, name := range cfg.Exporters {
		switch name {
		case config.ExporterJSON:
			exporters = append(exporters, NewJSONFileExporter(JSONFileOptionsFromConfig(cfg), logger))
		case config.ExporterSQLite:
			exporters = append(exporters, NewSQLiteExporter(battles, logger))
		case config.ExporterRemote:
			exporters = append(exporters, NewRemoteExporter(api.NewUploadClient(cfg), logger))
		}
	}
	return exporters
}

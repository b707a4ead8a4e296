package fx

import (
	"database/sql"
	"fmt"
	"os"

	"zipcaster/internal/codec"
	"zipcaster/internal/config"
	"zipcaster/internal/database"
	"zipcaster/internal/db"
	"zipcaster/internal/export"
	"zipcaster/internal/logger"
	"zipcaster/internal/repository"
	"zipcaster/internal/server"
	"zipcaster/internal/service"
	"zipcaster/internal/source"
	"zipcaster/internal/transform"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// ProvideAbilityTable loads ABILITY_TABLE_PATH when set and the embedded
// table otherwise.
func ProvideAbilityTable(cfg *config.Config, logger zerolog.Logger) (*codec.AbilityTable, error) {
	if cfg.AbilityTablePath == "" {
		return codec.DefaultAbilityTable()
	}

	f, err := os.Open(cfg.AbilityTablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ability table: %w", err)
	}
	defer f.Close()

	table, err := codec.LoadAbilityTable(f)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.AbilityTablePath).Int("count", table.Len()).Msg("ability table loaded")
	return table, nil
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewBattleRepository),
	fx.Provide(repository.NewImportRunRepository),
	// engine
	fx.Provide(ProvideAbilityTable),
	fx.Provide(codec.NewAbilityResolver),
	fx.Provide(transform.NewAssembler),
	fx.Provide(transform.NewEngine),
	// io
	fx.Provide(source.NewDirFromConfig),
	fx.Provide(export.New),
	// svc
	fx.Provide(service.NewImportService),
	fx.Provide(service.NewBattleService),
	// server
	fx.Provide(server.NewBattleServer),
)

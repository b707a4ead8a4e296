package main

import (
	"context"
	"database/sql"
	"os"
	"sync/atomic"

	fxmodules "zipcaster/internal/fx"
	"zipcaster/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// zipcaster runs one import of the configured modes and exits. The exit code
// is non-zero when any mode fails; per-battle failures only show in the logs
// and run counters.
func main() {
	var failed atomic.Bool

	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, importSvc *service.ImportService, db *sql.DB, logger zerolog.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						runs, err := importSvc.Run(context.Background())
						if err != nil {
							logger.Error().Err(err).Msg("import failed")
							failed.Store(true)
						}
						logger.Info().Int("count", len(runs)).Msg("import finished")
						shutdowner.Shutdown()
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					return db.Close()
				},
			})
		}),
	)

	app.Run()
	if failed.Load() || app.Err() != nil {
		os.Exit(1)
	}
}

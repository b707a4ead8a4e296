package service

import (
	"context"

	"zipcaster/internal/constants"
	"zipcaster/internal/domain"
	"zipcaster/internal/repository"
	"zipcaster/internal/transform"

	"github.com/rs/zerolog"
)

type BattleService struct {
	engine  *transform.Engine
	battles *repository.BattleRepository
	runs    *repository.ImportRunRepository
	logger  zerolog.Logger
}

func NewBattleService(engine *transform.Engine, battles *repository.BattleRepository, runs *repository.ImportRunRepository, logger zerolog.Logger) *BattleService {
	return &BattleService{engine: engine, battles: battles, runs: runs, logger: logger}
}

// Transform normalizes a payload without storing anything.
func (s *BattleService) Transform(overview []byte, details [][]byte) transform.Result {
	res := s.engine.Transform(overview, details)
	s.logger.Debug().
		Int("count", len(res.Records)).
		Int("failed", len(res.Failures)).
		Int("warnings", len(res.Warnings)).
		Msg("payload transformed")
	return res
}

func (s *BattleService) List(ctx context.Context, limit int) ([]domain.BattleRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.battles.List(ctx, ClampLimit(limit))
}

func (s *BattleService) Get(ctx context.Context, id string) (*domain.BattleRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.battles.Get(ctx, id)
}

func (s *BattleService) Runs(ctx context.Context, limit int) ([]repository.ImportRun, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.runs.List(ctx, ClampLimit(limit))
}

// ClampLimit applies the default and maximum list sizes.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return constants.DefaultBattleListLimit
	case limit > constants.MaxBattleListLimit:
		return constants.MaxBattleListLimit
	default:
		return limit
	}
}

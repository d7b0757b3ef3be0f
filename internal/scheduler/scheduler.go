// Package scheduler sweeps every (building, utility) pair through the alert
// evaluator on a fixed interval. The sweep is the safety net behind inline
// evaluation on ingest: pairs whose inline pass failed get retried here.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuskit/utilitrack/internal/alert/evaluator"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	"github.com/campuskit/utilitrack/internal/clock"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Buildings buildingdomain.Repository
	Evaluator *evaluator.Evaluator
	Config    Config `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	buildings buildingdomain.Repository
	evaluator *evaluator.Evaluator
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Buildings == nil || p.Evaluator == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		buildings: p.Buildings,
		evaluator: p.Evaluator,
	}, nil
}

// RunOnce evaluates every building x utility pair, joining per-pair errors.
// A failed pair never blocks the rest of the sweep.
func (s *Scheduler) RunOnce(parent context.Context) error {
	start := s.clock.Now()

	buildings, err := s.buildings.List(parent)
	if err != nil {
		return fmt.Errorf("list buildings: %w", err)
	}

	var sweepErr error
	pairs := 0
	for _, building := range buildings {
		for _, utility := range readingdomain.UtilityTypes {
			if parent.Err() != nil {
				return errors.Join(sweepErr, parent.Err())
			}
			pairs++
			if err := s.evaluatePair(parent, building, utility); err != nil {
				sweepErr = errors.Join(sweepErr, err)
			}
		}
	}

	s.log.Debug("sweep finished",
		zap.Int("pairs", pairs),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("had_errors", sweepErr != nil),
	)
	return sweepErr
}

func (s *Scheduler) evaluatePair(parent context.Context, building buildingdomain.Building, utility readingdomain.UtilityType) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.PairTimeout)
	defer cancel()

	_, err := s.evaluator.EvaluatePair(ctx, building.ID, utility)
	if err == nil {
		return nil
	}

	// A pair timing out is a soft failure; the next sweep retries it.
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.Warn("pair evaluation timed out",
			zap.String("building_id", building.ID.String()),
			zap.String("utility", string(utility)),
			zap.Duration("timeout", s.cfg.PairTimeout),
		)
		return nil
	}

	s.log.Warn("pair evaluation failed",
		zap.String("building_id", building.ID.String()),
		zap.String("utility", string(utility)),
		zap.Error(err),
	)
	return fmt.Errorf("pair %s/%s: %w", building.Code, utility, err)
}

// RunForever sweeps on a fixed interval until the context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/alert/evaluator"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	"github.com/campuskit/utilitrack/internal/clock"
	"github.com/campuskit/utilitrack/internal/reading/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Buildings buildingdomain.Repository
	Evaluator *evaluator.Evaluator
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	buildings buildingdomain.Repository
	evaluator *evaluator.Evaluator
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("reading.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		buildings: p.Buildings,
		evaluator: p.Evaluator,
	}
}

// Record validates and persists one reading, then evaluates the affected
// (building, utility) pair inline. Evaluation failures do not fail the
// ingest; the scheduler sweep picks the pair up again.
func (s *Service) Record(ctx context.Context, input domain.RecordInput) (*domain.UtilityReading, error) {
	if !input.UtilityType.Valid() {
		return nil, domain.ErrInvalidUtility
	}
	if input.Value < 0 {
		return nil, domain.ErrNegativeValue
	}

	building, err := s.buildings.FindByID(ctx, input.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, domain.ErrInvalidBuilding
	}

	now := s.clock.Now()
	reading := &domain.UtilityReading{
		ID:          s.genID.Generate(),
		BuildingID:  input.BuildingID,
		UtilityType: input.UtilityType,
		Value:       input.Value,
		Unit:        input.Unit,
		ReadingDate: input.ReadingDate,
		Notes:       input.Notes,
		CreatedAt:   now,
	}
	if reading.Unit == "" {
		reading.Unit = input.UtilityType.DefaultUnit()
	}
	if reading.ReadingDate.IsZero() {
		reading.ReadingDate = now
	}
	reading.ReadingDate = reading.ReadingDate.UTC()

	if err := s.db.WithContext(ctx).Create(reading).Error; err != nil {
		return nil, err
	}

	s.log.Info("reading recorded",
		zap.String("reading_id", reading.ID.String()),
		zap.String("building_id", reading.BuildingID.String()),
		zap.String("utility", string(reading.UtilityType)),
		zap.Float64("value", reading.Value),
	)

	if s.evaluator != nil {
		if _, err := s.evaluator.EvaluatePair(ctx, reading.BuildingID, reading.UtilityType); err != nil {
			s.log.Warn("inline evaluation failed",
				zap.String("building_id", reading.BuildingID.String()),
				zap.String("utility", string(reading.UtilityType)),
				zap.Error(err),
			)
		}
	}

	return reading, nil
}

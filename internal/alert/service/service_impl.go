package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/alert/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("alert.service"),
	}
}

// Acknowledge moves a pending alert to acknowledged. The status guard on the
// UPDATE keeps the transition atomic: a concurrent resolve or a stale caller
// affects zero rows and gets ErrInvalidTransition with nothing mutated.
func (s *Service) Acknowledge(ctx context.Context, id snowflake.ID) (*domain.Alert, error) {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":          domain.StatusAcknowledged,
			"acknowledged_at": now,
			"updated_at":      now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, s.transitionFailure(ctx, id)
	}

	s.log.Info("alert acknowledged", zap.String("alert_id", id.String()))
	return s.load(ctx, id)
}

// Resolve moves a pending or acknowledged alert to resolved, recording
// resolved_at and optional notes. Resolved is terminal; re-resolving fails.
func (s *Service) Resolve(ctx context.Context, id snowflake.ID, notes string) (*domain.Alert, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":      domain.StatusResolved,
		"resolved_at": now,
		"updated_at":  now,
	}
	if notes != "" {
		updates["resolution_notes"] = notes
	}

	result := s.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("id = ? AND status IN ?", id, []domain.Status{domain.StatusPending, domain.StatusAcknowledged}).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, s.transitionFailure(ctx, id)
	}

	s.log.Info("alert resolved", zap.String("alert_id", id.String()))
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Alert, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.Alert{})
	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if filter.BuildingID != nil {
		stmt = stmt.Where("building_id = ?", *filter.BuildingID)
	}

	var alerts []domain.Alert
	err := stmt.Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Alert, error) {
	var alert domain.Alert
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// transitionFailure tells a missing alert apart from a disallowed transition.
func (s *Service) transitionFailure(ctx context.Context, id snowflake.ID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

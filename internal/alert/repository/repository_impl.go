package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/alert/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
	"gorm.io/gorm"
)

type sink struct {
	db *gorm.DB
}

// New returns a gorm-backed alert sink.
func New(db *gorm.DB) domain.Sink {
	return &sink{db: db}
}

func (s *sink) FindPendingByRule(ctx context.Context, ruleID, buildingID snowflake.ID) (*domain.Alert, error) {
	var alert domain.Alert
	err := s.db.WithContext(ctx).
		Where("rule_id = ? AND building_id = ? AND status = ?", ruleID, buildingID, domain.StatusPending).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (s *sink) FindPendingBuiltin(ctx context.Context, buildingID snowflake.ID, utility readingdomain.UtilityType, alertType domain.Type) (*domain.Alert, error) {
	var alert domain.Alert
	err := s.db.WithContext(ctx).
		Where("building_id = ? AND utility_type = ? AND alert_type = ? AND status = ? AND rule_id IS NULL",
			buildingID, utility, alertType, domain.StatusPending).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (s *sink) Create(ctx context.Context, alert *domain.Alert) error {
	return s.db.WithContext(ctx).Create(alert).Error
}

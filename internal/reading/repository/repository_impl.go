package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/reading/domain"
	"gorm.io/gorm"
)

type source struct {
	db *gorm.DB
}

// New returns a gorm-backed reading source. Fetch returns readings ordered
// ascending by reading_date over the half-open window [start, end).
func New(db *gorm.DB) domain.Source {
	return &source{db: db}
}

func (s *source) Fetch(ctx context.Context, buildingID snowflake.ID, utility domain.UtilityType, start, end time.Time) ([]domain.UtilityReading, error) {
	var readings []domain.UtilityReading
	err := s.db.WithContext(ctx).
		Where("building_id = ? AND utility_type = ? AND reading_date >= ? AND reading_date < ?",
			buildingID, utility, start, end).
		Order("reading_date ASC, id ASC").
		Find(&readings).Error
	return readings, err
}

// Package domain contains building metadata consumed by the analytics engine.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
)

// Zone groups buildings into campus areas for scoped rules and aggregation.
type Zone string

const (
	ZoneAcademic       Zone = "academic"
	ZoneResidential    Zone = "residential"
	ZoneResearch       Zone = "research"
	ZoneAdministration Zone = "administration"
	ZoneCommon         Zone = "common"
)

// Building carries the metadata the engine needs: zone membership and
// per-utility daily thresholds.
type Building struct {
	ID                   snowflake.ID `gorm:"primaryKey"`
	Name                 string       `gorm:"type:text;not null"`
	Code                 string       `gorm:"type:text;not null;uniqueIndex"`
	Zone                 Zone         `gorm:"type:text;index"`
	WaterThreshold       float64      `gorm:"not null;default:10000"`
	ElectricityThreshold float64      `gorm:"not null;default:5000"`
	Is24x7               bool         `gorm:"not null;default:false"`
	IoTEnabled           bool         `gorm:"not null;default:false"`
	CreatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Building) TableName() string { return "buildings" }

// ThresholdFor returns the building's configured daily threshold for a utility.
func (b Building) ThresholdFor(utility readingdomain.UtilityType) float64 {
	if utility == readingdomain.UtilityWater {
		return b.WaterThreshold
	}
	return b.ElectricityThreshold
}

// Repository exposes building metadata lookups.
type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*Building, error)
	List(ctx context.Context) ([]Building, error)
}

// Service manages the building registry.
type Service interface {
	Create(ctx context.Context, building Building) (*Building, error)
	Get(ctx context.Context, id snowflake.ID) (*Building, error)
	List(ctx context.Context) ([]Building, error)
}

var (
	ErrNotFound      = errors.New("building_not_found")
	ErrDuplicateCode = errors.New("duplicate_building_code")
	ErrInvalidName   = errors.New("invalid_building_name")
	ErrInvalidCode   = errors.New("invalid_building_code")
	ErrInvalidZone   = errors.New("invalid_building_zone")
)

// ValidZone reports whether the zone is one of the known campus areas.
func ValidZone(zone Zone) bool {
	switch zone {
	case ZoneAcademic, ZoneResidential, ZoneResearch, ZoneAdministration, ZoneCommon:
		return true
	default:
		return false
	}
}

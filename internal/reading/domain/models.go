// Package domain contains persistence models for utility readings.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// UtilityType identifies the metered utility.
type UtilityType string

const (
	UtilityWater       UtilityType = "water"
	UtilityElectricity UtilityType = "electricity"
)

// UtilityTypes lists every known utility, in evaluation order.
var UtilityTypes = []UtilityType{UtilityWater, UtilityElectricity}

// Valid reports whether the utility type is known.
func (u UtilityType) Valid() bool {
	return u == UtilityWater || u == UtilityElectricity
}

// DefaultUnit returns the unit recorded when the caller supplies none.
func (u UtilityType) DefaultUnit() string {
	if u == UtilityWater {
		return "liters"
	}
	return "kWh"
}

// UtilityReading stores a single metered measurement for a building.
// Timestamps are stored normalized to UTC; the engine performs no timezone
// conversion of its own.
type UtilityReading struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	BuildingID  snowflake.ID `gorm:"not null;index:ix_readings_pair,priority:1"`
	UtilityType UtilityType  `gorm:"type:text;not null;index:ix_readings_pair,priority:2"`
	Value       float64      `gorm:"not null"`
	Unit        string       `gorm:"type:text;not null"`
	ReadingDate time.Time    `gorm:"not null;index:ix_readings_pair,priority:3"`
	Notes       string       `gorm:"type:text"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (UtilityReading) TableName() string { return "utility_readings" }

// Source supplies ordered readings for one (building, utility) pair.
// Implementations must return readings ascending by ReadingDate; an empty
// result is valid.
type Source interface {
	Fetch(ctx context.Context, buildingID snowflake.ID, utility UtilityType, start, end time.Time) ([]UtilityReading, error)
}

var (
	ErrInvalidBuilding = errors.New("invalid_building")
	ErrInvalidUtility  = errors.New("invalid_utility_type")
	ErrNegativeValue   = errors.New("negative_value")
)

// RecordInput carries one incoming measurement. Unit defaults from the
// utility type when empty; ReadingDate defaults to the current time when
// zero.
type RecordInput struct {
	BuildingID  snowflake.ID
	UtilityType UtilityType
	Value       float64
	Unit        string
	ReadingDate time.Time
	Notes       string
}

// Service ingests readings and triggers evaluation of the affected pair.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*UtilityReading, error)
}

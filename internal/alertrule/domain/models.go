// Package domain defines configurable alert rules and their validation.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
)

// ScopeType selects the population a rule applies to.
type ScopeType string

const (
	ScopeGlobal   ScopeType = "global"
	ScopeZone     ScopeType = "zone"
	ScopeBuilding ScopeType = "building"
)

// ConditionType selects how a rule's threshold is evaluated.
type ConditionType string

const (
	ConditionThreshold    ConditionType = "threshold"
	ConditionZScore       ConditionType = "zscore"
	ConditionRateOfChange ConditionType = "rate_of_change"
)

// Severity grades a fired alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AlertRule configures one alerting condition. ScopeValue carries the zone
// name or building id and must be present exactly when ScopeType requires it.
type AlertRule struct {
	ID                   snowflake.ID              `gorm:"primaryKey"`
	Name                 string                    `gorm:"type:text;not null"`
	ScopeType            ScopeType                 `gorm:"type:text;not null;default:'global'"`
	ScopeValue           string                    `gorm:"type:text"`
	UtilityType          readingdomain.UtilityType `gorm:"type:text;not null"`
	ConditionType        ConditionType             `gorm:"type:text;not null"`
	ThresholdValue       float64                   `gorm:"not null"`
	ComparisonWindowDays int                       `gorm:"not null;default:7"`
	ConsecutiveCount     int                       `gorm:"not null;default:1"`
	Severity             Severity                  `gorm:"type:text;not null;default:'medium'"`
	IsActive             bool                      `gorm:"not null;default:true"`
	CreatedAt            time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AlertRule) TableName() string { return "alert_rules" }

// Validation errors, surfaced at rule creation so malformed rules never
// reach the evaluator.
var (
	ErrInvalidName             = errors.New("invalid_name")
	ErrInvalidScopeType        = errors.New("invalid_scope_type")
	ErrMissingScopeValue       = errors.New("missing_scope_value")
	ErrUnexpectedScopeValue    = errors.New("unexpected_scope_value")
	ErrInvalidUtility          = errors.New("invalid_utility_type")
	ErrInvalidConditionType    = errors.New("invalid_condition_type")
	ErrInvalidWindow           = errors.New("invalid_comparison_window")
	ErrInvalidConsecutiveCount = errors.New("invalid_consecutive_count")
	ErrInvalidSeverity         = errors.New("invalid_severity")
	ErrNotFound                = errors.New("alert_rule_not_found")
)

// Validate checks structural invariants. It does not verify that a
// referenced building or zone exists; that belongs to the admin surface.
func (r AlertRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}

	switch r.ScopeType {
	case ScopeGlobal:
		if strings.TrimSpace(r.ScopeValue) != "" {
			return ErrUnexpectedScopeValue
		}
	case ScopeZone, ScopeBuilding:
		if strings.TrimSpace(r.ScopeValue) == "" {
			return ErrMissingScopeValue
		}
	default:
		return ErrInvalidScopeType
	}

	if !r.UtilityType.Valid() {
		return ErrInvalidUtility
	}

	switch r.ConditionType {
	case ConditionThreshold, ConditionZScore, ConditionRateOfChange:
	default:
		return ErrInvalidConditionType
	}

	if r.ComparisonWindowDays < 1 {
		return ErrInvalidWindow
	}
	if r.ConsecutiveCount < 1 {
		return ErrInvalidConsecutiveCount
	}

	switch r.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return ErrInvalidSeverity
	}

	return nil
}

// Matches reports whether the rule's scope covers the given building.
func (r AlertRule) Matches(building buildingdomain.Building) bool {
	switch r.ScopeType {
	case ScopeGlobal:
		return true
	case ScopeZone:
		return string(building.Zone) == r.ScopeValue
	case ScopeBuilding:
		id, err := snowflake.ParseString(r.ScopeValue)
		if err != nil {
			return false
		}
		return id == building.ID
	default:
		return false
	}
}

// Source lists active rules for the evaluator.
type Source interface {
	// ListActive returns every active rule for the utility; the evaluator
	// applies scope matching per building.
	ListActive(ctx context.Context, utility readingdomain.UtilityType) ([]AlertRule, error)
}

// Service manages rule administration.
type Service interface {
	Create(ctx context.Context, rule AlertRule) (*AlertRule, error)
	Update(ctx context.Context, rule AlertRule) (*AlertRule, error)
	Delete(ctx context.Context, id snowflake.ID) error
	// List returns rules newest first; limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]AlertRule, error)
}

// Package domain contains the alert model, its lifecycle states, and the
// sink contract the evaluator emits through.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	alertruledomain "github.com/campuskit/utilitrack/internal/alertrule/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
)

// Status is the lifecycle state of an alert.
// pending -> acknowledged -> resolved, with acknowledgement optional.
// resolved is terminal.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

// Type classifies what raised the alert.
type Type string

const (
	TypeSpike           Type = "spike"
	TypeThresholdBreach Type = "threshold_breach"
	TypeContinuousHigh  Type = "continuous_high"
	TypeRuleTrigger     Type = "rule_trigger"
)

// Alert records one fired condition. RuleID is set only for rule_trigger
// alerts; ReadingID backlinks the reading that tripped the condition when
// one exists.
type Alert struct {
	ID              snowflake.ID              `gorm:"primaryKey"`
	BuildingID      snowflake.ID              `gorm:"not null;index:ix_alerts_pair,priority:1"`
	UtilityType     readingdomain.UtilityType `gorm:"type:text;not null;index:ix_alerts_pair,priority:2"`
	AlertType       Type                      `gorm:"type:text;not null;index:ix_alerts_pair,priority:3"`
	RuleID          *snowflake.ID             `gorm:"index"`
	ReadingID       *snowflake.ID             ``
	Severity        alertruledomain.Severity  `gorm:"type:text;not null;default:'medium'"`
	Message         string                    `gorm:"type:text;not null"`
	Status          Status                    `gorm:"type:text;not null;default:'pending';index"`
	AcknowledgedAt  *time.Time                ``
	ResolvedAt      *time.Time                ``
	ResolutionNotes string                    `gorm:"type:text"`
	CreatedAt       time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Alert) TableName() string { return "alerts" }

var (
	ErrNotFound = errors.New("alert_not_found")
	// ErrInvalidTransition is returned when a lifecycle operation is
	// attempted from a state that disallows it; nothing is mutated.
	ErrInvalidTransition = errors.New("invalid_alert_transition")
)

// Sink persists candidate alerts and answers pending-dedup lookups.
type Sink interface {
	// FindPendingByRule returns the outstanding pending alert for one
	// (rule, building) pair, or nil.
	FindPendingByRule(ctx context.Context, ruleID, buildingID snowflake.ID) (*Alert, error)
	// FindPendingBuiltin returns the outstanding pending alert for one
	// (building, utility, type) triple, or nil. Used by the built-in
	// anomaly pass, which has no rule id.
	FindPendingBuiltin(ctx context.Context, buildingID snowflake.ID, utility readingdomain.UtilityType, alertType Type) (*Alert, error)
	Create(ctx context.Context, alert *Alert) error
}

// ListFilter narrows lifecycle listings.
type ListFilter struct {
	Status     *Status
	BuildingID *snowflake.ID
}

// Service is the operator-facing lifecycle surface.
type Service interface {
	Acknowledge(ctx context.Context, id snowflake.ID) (*Alert, error)
	Resolve(ctx context.Context, id snowflake.ID, notes string) (*Alert, error)
	List(ctx context.Context, filter ListFilter) ([]Alert, error)
}

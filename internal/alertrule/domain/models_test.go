package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
	"github.com/stretchr/testify/assert"
)

func validRule() AlertRule {
	return AlertRule{
		Name:                 "High water use",
		ScopeType:            ScopeGlobal,
		UtilityType:          readingdomain.UtilityWater,
		ConditionType:        ConditionThreshold,
		ThresholdValue:       1000,
		ComparisonWindowDays: 7,
		ConsecutiveCount:     1,
		Severity:             SeverityMedium,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AlertRule)
		wantErr error
	}{
		{"valid global", func(r *AlertRule) {}, nil},
		{"valid zone", func(r *AlertRule) {
			r.ScopeType = ScopeZone
			r.ScopeValue = "academic"
		}, nil},
		{"valid building", func(r *AlertRule) {
			r.ScopeType = ScopeBuilding
			r.ScopeValue = "123456789"
		}, nil},
		{"blank name", func(r *AlertRule) { r.Name = "  " }, ErrInvalidName},
		{"unknown scope type", func(r *AlertRule) { r.ScopeType = "campus" }, ErrInvalidScopeType},
		{"zone without value", func(r *AlertRule) { r.ScopeType = ScopeZone }, ErrMissingScopeValue},
		{"building without value", func(r *AlertRule) { r.ScopeType = ScopeBuilding }, ErrMissingScopeValue},
		{"global with value", func(r *AlertRule) { r.ScopeValue = "academic" }, ErrUnexpectedScopeValue},
		{"unknown utility", func(r *AlertRule) { r.UtilityType = "gas" }, ErrInvalidUtility},
		{"unknown condition", func(r *AlertRule) { r.ConditionType = "stddev" }, ErrInvalidConditionType},
		{"zero window", func(r *AlertRule) { r.ComparisonWindowDays = 0 }, ErrInvalidWindow},
		{"zero consecutive count", func(r *AlertRule) { r.ConsecutiveCount = 0 }, ErrInvalidConsecutiveCount},
		{"unknown severity", func(r *AlertRule) { r.Severity = "critical" }, ErrInvalidSeverity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule := validRule()
			tc.mutate(&rule)

			err := rule.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	building := buildingdomain.Building{
		ID:   snowflake.ID(987654321),
		Zone: buildingdomain.ZoneResearch,
	}

	global := validRule()
	assert.True(t, global.Matches(building))

	zone := validRule()
	zone.ScopeType = ScopeZone
	zone.ScopeValue = "research"
	assert.True(t, zone.Matches(building))

	zone.ScopeValue = "residential"
	assert.False(t, zone.Matches(building))

	byID := validRule()
	byID.ScopeType = ScopeBuilding
	byID.ScopeValue = building.ID.String()
	assert.True(t, byID.Matches(building))

	byID.ScopeValue = "111"
	assert.False(t, byID.Matches(building))

	byID.ScopeValue = "not-a-snowflake"
	assert.False(t, byID.Matches(building))
}

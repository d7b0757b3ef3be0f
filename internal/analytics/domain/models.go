// Package domain contains the reporting result types served to dashboards.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/analytics"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
)

// UtilityTotal is a summed consumption figure with its sample size.
type UtilityTotal struct {
	Total      float64 `json:"total"`
	SampleSize int     `json:"sample_size"`
}

// TotalsResult reports consumption per utility over one window, optionally
// narrowed to a single building.
type TotalsResult struct {
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	BuildingID  *snowflake.ID `json:"building_id,omitempty"`
	Water       UtilityTotal  `json:"water"`
	Electricity UtilityTotal  `json:"electricity"`
}

// BuildingRanking is one row of a per-building consumption leaderboard.
type BuildingRanking struct {
	BuildingID snowflake.ID        `json:"building_id"`
	Name       string              `json:"name"`
	Code       string              `json:"code"`
	Zone       buildingdomain.Zone `json:"zone"`
	Total      float64             `json:"total"`
	SampleSize int                 `json:"sample_size"`
}

// SummaryRow is one bucket of a periodized consumption summary. Buildings
// breaks the bucket total down per building; buckets with no readings are
// absent, not zero.
type SummaryRow struct {
	PeriodStart time.Time                 `json:"period_start"`
	UtilityType readingdomain.UtilityType `json:"utility_type"`
	Total       float64                   `json:"total"`
	Buildings   map[snowflake.ID]float64  `json:"buildings"`
}

// ZoneTotal aggregates one campus zone.
type ZoneTotal struct {
	Zone       buildingdomain.Zone `json:"zone"`
	Total      float64             `json:"total"`
	SampleSize int                 `json:"sample_size"`
}

// StatsResult pairs descriptive statistics over the window's series with
// per-zone totals.
type StatsResult struct {
	UtilityType readingdomain.UtilityType `json:"utility_type"`
	Start       time.Time                 `json:"start"`
	End         time.Time                 `json:"end"`
	Stats       analytics.SeriesStats     `json:"stats"`
	Zones       []ZoneTotal               `json:"zones"`
}

// InsightPoint is one element of an insight series, carrying the derived
// per-point figures alongside the raw value.
type InsightPoint struct {
	ReadingDate   time.Time `json:"reading_date"`
	Value         float64   `json:"value"`
	MovingAverage float64   `json:"moving_average"`
	CumulativeSum float64   `json:"cumulative_sum"`
	ZScore        float64   `json:"z_score"`
}

// InsightsResult is the full drill-down view: the derived series plus
// anomaly counts and per-building and per-zone rollups.
type InsightsResult struct {
	UtilityType       readingdomain.UtilityType     `json:"utility_type"`
	Start             time.Time                     `json:"start"`
	End               time.Time                     `json:"end"`
	Series            []InsightPoint                `json:"series"`
	Stats             analytics.SeriesStats         `json:"stats"`
	AnomaliesDetected int                           `json:"anomalies_detected"`
	ThresholdBreaches int                           `json:"threshold_breaches"`
	Buildings         map[snowflake.ID]UtilityTotal `json:"buildings"`
	Zones             []ZoneTotal                   `json:"zones"`
}

// InsightsFilter narrows the insight series. Zone and BuildingIDs are
// conjunctive when both are set; a nil AbsoluteThreshold skips breach
// counting.
type InsightsFilter struct {
	Zone              *buildingdomain.Zone
	BuildingIDs       []snowflake.ID
	Window            int
	AbsoluteThreshold *float64
}

// Service serves read-only reporting queries. All windows are half-open
// [start, end).
type Service interface {
	Totals(ctx context.Context, start, end time.Time, buildingID *snowflake.ID) (*TotalsResult, error)
	Rankings(ctx context.Context, utility readingdomain.UtilityType, start, end time.Time, limit int) ([]BuildingRanking, error)
	Summary(ctx context.Context, period analytics.Bucket, start, end time.Time) ([]SummaryRow, error)
	Stats(ctx context.Context, utility readingdomain.UtilityType, start, end time.Time) (*StatsResult, error)
	Insights(ctx context.Context, utility readingdomain.UtilityType, start, end time.Time, filter InsightsFilter) (*InsightsResult, error)
}

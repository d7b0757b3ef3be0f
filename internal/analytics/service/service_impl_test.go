package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/analytics"
	"github.com/campuskit/utilitrack/internal/analytics/domain"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	windowStart = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
)

func setupReporting(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&buildingdomain.Building{},
		&readingdomain.UtilityReading{},
	))

	buildings := []buildingdomain.Building{
		{ID: 1, Name: "Library", Code: "LIB", Zone: buildingdomain.ZoneAcademic},
		{ID: 2, Name: "Dorm A", Code: "DORM-A", Zone: buildingdomain.ZoneResidential},
	}
	require.NoError(t, db.Create(&buildings).Error)

	return NewService(ServiceParam{DB: db, Log: zap.NewNop()}), db
}

func seedReading(t *testing.T, db *gorm.DB, id, buildingID snowflake.ID, utility readingdomain.UtilityType, value float64, date time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&readingdomain.UtilityReading{
		ID:          id,
		BuildingID:  buildingID,
		UtilityType: utility,
		Value:       value,
		Unit:        utility.DefaultUnit(),
		ReadingDate: date,
	}).Error)
}

func TestTotals(t *testing.T) {
	svc, db := setupReporting(t)
	seedReading(t, db, 10, 1, readingdomain.UtilityWater, 100, windowStart.AddDate(0, 0, 1))
	seedReading(t, db, 11, 2, readingdomain.UtilityWater, 50, windowStart.AddDate(0, 0, 2))
	seedReading(t, db, 12, 1, readingdomain.UtilityElectricity, 30, windowStart.AddDate(0, 0, 3))
	// Outside the half-open window.
	seedReading(t, db, 13, 1, readingdomain.UtilityWater, 999, windowEnd)

	totals, err := svc.Totals(context.Background(), windowStart, windowEnd, nil)

	require.NoError(t, err)
	assert.Equal(t, 150.0, totals.Water.Total)
	assert.Equal(t, 2, totals.Water.SampleSize)
	assert.Equal(t, 30.0, totals.Electricity.Total)
	assert.Equal(t, 1, totals.Electricity.SampleSize)
}

func TestTotals_BuildingFilter(t *testing.T) {
	svc, db := setupReporting(t)
	seedReading(t, db, 10, 1, readingdomain.UtilityWater, 100, windowStart.AddDate(0, 0, 1))
	seedReading(t, db, 11, 2, readingdomain.UtilityWater, 50, windowStart.AddDate(0, 0, 2))

	buildingID := snowflake.ID(2)
	totals, err := svc.Totals(context.Background(), windowStart, windowEnd, &buildingID)

	require.NoError(t, err)
	assert.Equal(t, 50.0, totals.Water.Total)
	assert.Equal(t, 1, totals.Water.SampleSize)
	assert.Zero(t, totals.Electricity.Total)
}

func TestRankings(t *testing.T) {
	svc, db := setupReporting(t)
	seedReading(t, db, 10, 1, readingdomain.UtilityWater, 100, windowStart.AddDate(0, 0, 1))
	seedReading(t, db, 11, 1, readingdomain.UtilityWater, 100, windowStart.AddDate(0, 0, 2))
	seedReading(t, db, 12, 2, readingdomain.UtilityWater, 500, windowStart.AddDate(0, 0, 3))

	rankings, err := svc.Rankings(context.Background(), readingdomain.UtilityWater, windowStart, windowEnd, 10)

	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, snowflake.ID(2), rankings[0].BuildingID)
	assert.Equal(t, 500.0, rankings[0].Total)
	assert.Equal(t, snowflake.ID(1), rankings[1].BuildingID)
	assert.Equal(t, 200.0, rankings[1].Total)
	assert.Equal(t, 2, rankings[1].SampleSize)
}

func TestSummary_WeeklyBuckets(t *testing.T) {
	svc, db := setupReporting(t)
	// 2024-03-04 is a Monday; 03-06 lands in the same week, 03-11 the next.
	seedReading(t, db, 10, 1, readingdomain.UtilityWater, 10, time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC))
	seedReading(t, db, 11, 2, readingdomain.UtilityWater, 20, time.Date(2024, time.March, 6, 8, 0, 0, 0, time.UTC))
	seedReading(t, db, 12, 1, readingdomain.UtilityWater, 40, time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC))

	rows, err := svc.Summary(context.Background(), analytics.BucketWeekly, windowStart, windowEnd)

	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), first.PeriodStart)
	assert.Equal(t, 30.0, first.Total)
	assert.Equal(t, 10.0, first.Buildings[1])
	assert.Equal(t, 20.0, first.Buildings[2])

	second := rows[1]
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), second.PeriodStart)
	assert.Equal(t, 40.0, second.Total)
}

func TestStats_ZoneTotals(t *testing.T) {
	svc, db := setupReporting(t)
	seedReading(t, db, 10, 1, readingdomain.UtilityWater, 100, windowStart.AddDate(0, 0, 1))
	seedReading(t, db, 11, 2, readingdomain.UtilityWater, 60, windowStart.AddDate(0, 0, 2))
	seedReading(t, db, 12, 2, readingdomain.UtilityWater, 40, windowStart.AddDate(0, 0, 3))

	result, err := svc.Stats(context.Background(), readingdomain.UtilityWater, windowStart, windowEnd)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.SampleSize)
	assert.InDelta(t, 200.0/3.0, result.Stats.Mean, 1e-9)

	require.Len(t, result.Zones, 2)
	assert.Equal(t, buildingdomain.ZoneAcademic, result.Zones[0].Zone)
	assert.Equal(t, 100.0, result.Zones[0].Total)
	assert.Equal(t, buildingdomain.ZoneResidential, result.Zones[1].Zone)
	assert.Equal(t, 100.0, result.Zones[1].Total)
	assert.Equal(t, 2, result.Zones[1].SampleSize)
}

func TestInsights_FiltersAndSeries(t *testing.T) {
	svc, db := setupReporting(t)
	seedReading(t, db, 10, 1, readingdomain.UtilityWater, 10, windowStart.AddDate(0, 0, 1))
	seedReading(t, db, 11, 1, readingdomain.UtilityWater, 20, windowStart.AddDate(0, 0, 2))
	seedReading(t, db, 12, 2, readingdomain.UtilityWater, 99, windowStart.AddDate(0, 0, 3))

	zone := buildingdomain.ZoneAcademic
	result, err := svc.Insights(context.Background(), readingdomain.UtilityWater, windowStart, windowEnd, domain.InsightsFilter{
		Zone: &zone,
	})

	require.NoError(t, err)
	require.Len(t, result.Series, 2)
	assert.Equal(t, []float64{10, 30}, []float64{result.Series[0].CumulativeSum, result.Series[1].CumulativeSum})
	assert.Len(t, result.Buildings, 1)
	assert.Equal(t, 30.0, result.Buildings[1].Total)
	require.Len(t, result.Zones, 1)
	assert.Equal(t, buildingdomain.ZoneAcademic, result.Zones[0].Zone)
}

func TestInsights_ThresholdBreachCounting(t *testing.T) {
	svc, db := setupReporting(t)
	seedReading(t, db, 10, 1, readingdomain.UtilityWater, 50, windowStart.AddDate(0, 0, 1))
	seedReading(t, db, 11, 1, readingdomain.UtilityWater, 150, windowStart.AddDate(0, 0, 2))
	seedReading(t, db, 12, 1, readingdomain.UtilityWater, 160, windowStart.AddDate(0, 0, 3))

	threshold := 100.0
	result, err := svc.Insights(context.Background(), readingdomain.UtilityWater, windowStart, windowEnd, domain.InsightsFilter{
		AbsoluteThreshold: &threshold,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ThresholdBreaches)
}

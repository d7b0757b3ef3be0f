package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campuskit/utilitrack/internal/analytics"
	"github.com/campuskit/utilitrack/internal/analytics/domain"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
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
		log: p.Log.Named("analytics.service"),
	}
}

// utilityTotalRow scans a grouped total per utility type.
type utilityTotalRow struct {
	UtilityType readingdomain.UtilityType
	Total       float64
	SampleSize  int
}

func (s *Service) Totals(ctx context.Context, start, end time.Time, buildingID *snowflake.ID) (*domain.TotalsResult, error) {
	stmt := s.db.WithContext(ctx).Model(&readingdomain.UtilityReading{}).
		Select("utility_type, COALESCE(SUM(value), 0) AS total, COUNT(*) AS sample_size").
		Where("reading_date >= ? AND reading_date < ?", start, end).
		Group("utility_type")
	if buildingID != nil {
		stmt = stmt.Where("building_id = ?", *buildingID)
	}

	var rows []utilityTotalRow
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := &domain.TotalsResult{Start: start, End: end, BuildingID: buildingID}
	for _, row := range rows {
		total := domain.UtilityTotal{Total: row.Total, SampleSize: row.SampleSize}
		switch row.UtilityType {
		case readingdomain.UtilityWater:
			result.Water = total
		case readingdomain.UtilityElectricity:
			result.Electricity = total
		}
	}
	return result, nil
}

func (s *Service) Rankings(ctx context.Context, utility readingdomain.UtilityType, start, end time.Time, limit int) ([]domain.BuildingRanking, error) {
	if limit <= 0 {
		limit = 10
	}

	var rankings []domain.BuildingRanking
	err := s.db.WithContext(ctx).Model(&readingdomain.UtilityReading{}).
		Select("buildings.id AS building_id, buildings.name, buildings.code, buildings.zone, SUM(utility_readings.value) AS total, COUNT(*) AS sample_size").
		Joins("JOIN buildings ON buildings.id = utility_readings.building_id").
		Where("utility_readings.utility_type = ? AND utility_readings.reading_date >= ? AND utility_readings.reading_date < ?", utility, start, end).
		Group("buildings.id, buildings.name, buildings.code, buildings.zone").
		Order("total DESC").
		Limit(limit).
		Scan(&rankings).Error
	return rankings, err
}

// Summary buckets consumption into half-open daily/weekly/monthly periods.
// Buckets nobody reported into are absent from the result.
func (s *Service) Summary(ctx context.Context, period analytics.Bucket, start, end time.Time) ([]domain.SummaryRow, error) {
	if !period.Valid() {
		period = analytics.BucketDaily
	}

	var readings []readingdomain.UtilityReading
	err := s.db.WithContext(ctx).
		Where("reading_date >= ? AND reading_date < ?", start, end).
		Order("reading_date ASC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}

	type rowKey struct {
		start   time.Time
		utility readingdomain.UtilityType
	}
	buckets := make(map[rowKey]*domain.SummaryRow)
	for _, r := range readings {
		key := rowKey{start: analytics.BucketStart(r.ReadingDate, period), utility: r.UtilityType}
		row, ok := buckets[key]
		if !ok {
			row = &domain.SummaryRow{
				PeriodStart: key.start,
				UtilityType: key.utility,
				Buildings:   make(map[snowflake.ID]float64),
			}
			buckets[key] = row
		}
		row.Total += r.Value
		row.Buildings[r.BuildingID] += r.Value
	}

	rows := make([]domain.SummaryRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].PeriodStart.Equal(rows[j].PeriodStart) {
			return rows[i].PeriodStart.Before(rows[j].PeriodStart)
		}
		return rows[i].UtilityType < rows[j].UtilityType
	})
	return rows, nil
}

func (s *Service) Stats(ctx context.Context, utility readingdomain.UtilityType, start, end time.Time) (*domain.StatsResult, error) {
	var values []float64
	err := s.db.WithContext(ctx).Model(&readingdomain.UtilityReading{}).
		Where("utility_type = ? AND reading_date >= ? AND reading_date < ?", utility, start, end).
		Order("reading_date ASC, id ASC").
		Pluck("value", &values).Error
	if err != nil {
		return nil, err
	}

	zones, err := s.zoneTotals(ctx, utility, start, end)
	if err != nil {
		return nil, err
	}

	return &domain.StatsResult{
		UtilityType: utility,
		Start:       start,
		End:         end,
		Stats:       analytics.Describe(values, analytics.DescribeOptions{}),
		Zones:       zones,
	}, nil
}

// insightRow joins one reading with the zone of its building.
type insightRow struct {
	BuildingID  snowflake.ID
	Zone        buildingdomain.Zone
	Value       float64
	ReadingDate time.Time
}

func (s *Service) Insights(ctx context.Context, utility readingdomain.UtilityType, start, end time.Time, filter domain.InsightsFilter) (*domain.InsightsResult, error) {
	stmt := s.db.WithContext(ctx).Model(&readingdomain.UtilityReading{}).
		Select("utility_readings.building_id, buildings.zone, utility_readings.value, utility_readings.reading_date").
		Joins("JOIN buildings ON buildings.id = utility_readings.building_id").
		Where("utility_readings.utility_type = ? AND utility_readings.reading_date >= ? AND utility_readings.reading_date < ?", utility, start, end).
		Order("utility_readings.reading_date ASC, utility_readings.id ASC")
	if filter.Zone != nil {
		stmt = stmt.Where("buildings.zone = ?", *filter.Zone)
	}
	if len(filter.BuildingIDs) > 0 {
		stmt = stmt.Where("utility_readings.building_id IN ?", filter.BuildingIDs)
	}

	var rows []insightRow
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}

	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.Value
	}
	stats := analytics.Describe(values, analytics.DescribeOptions{
		Window:            filter.Window,
		AbsoluteThreshold: filter.AbsoluteThreshold,
	})

	result := &domain.InsightsResult{
		UtilityType:       utility,
		Start:             start,
		End:               end,
		Series:            make([]domain.InsightPoint, len(rows)),
		Stats:             stats,
		AnomaliesDetected: stats.AnomaliesDetected,
		ThresholdBreaches: stats.ThresholdBreaches,
		Buildings:         make(map[snowflake.ID]domain.UtilityTotal),
	}

	zoneAgg := make(map[buildingdomain.Zone]*domain.ZoneTotal)
	for i, row := range rows {
		result.Series[i] = domain.InsightPoint{
			ReadingDate:   row.ReadingDate,
			Value:         row.Value,
			MovingAverage: stats.MovingAverage[i],
			CumulativeSum: stats.CumulativeSum[i],
			ZScore:        stats.ZScores[i],
		}

		total := result.Buildings[row.BuildingID]
		total.Total += row.Value
		total.SampleSize++
		result.Buildings[row.BuildingID] = total

		zone, ok := zoneAgg[row.Zone]
		if !ok {
			zone = &domain.ZoneTotal{Zone: row.Zone}
			zoneAgg[row.Zone] = zone
		}
		zone.Total += row.Value
		zone.SampleSize++
	}
	result.Zones = sortedZones(zoneAgg)

	return result, nil
}

func (s *Service) zoneTotals(ctx context.Context, utility readingdomain.UtilityType, start, end time.Time) ([]domain.ZoneTotal, error) {
	var zones []domain.ZoneTotal
	err := s.db.WithContext(ctx).Model(&readingdomain.UtilityReading{}).
		Select("buildings.zone, SUM(utility_readings.value) AS total, COUNT(*) AS sample_size").
		Joins("JOIN buildings ON buildings.id = utility_readings.building_id").
		Where("utility_readings.utility_type = ? AND utility_readings.reading_date >= ? AND utility_readings.reading_date < ?", utility, start, end).
		Group("buildings.zone").
		Order("buildings.zone ASC").
		Scan(&zones).Error
	return zones, err
}

func sortedZones(agg map[buildingdomain.Zone]*domain.ZoneTotal) []domain.ZoneTotal {
	zones := make([]domain.ZoneTotal, 0, len(agg))
	for _, z := range agg {
		zones = append(zones, *z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].Zone < zones[j].Zone })
	return zones
}

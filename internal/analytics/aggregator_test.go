package analytics

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBucketStart_Daily(t *testing.T) {
	ts := time.Date(2024, time.March, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, day(2024, time.March, 15), BucketStart(ts, BucketDaily))
}

func TestBucketStart_WeeklyStartsMonday(t *testing.T) {
	// 2024-03-13 is a Wednesday; its week starts Monday 2024-03-11.
	assert.Equal(t, day(2024, time.March, 11), BucketStart(day(2024, time.March, 13), BucketWeekly))

	// A Monday is its own bucket start.
	assert.Equal(t, day(2024, time.March, 11), BucketStart(day(2024, time.March, 11), BucketWeekly))

	// A Sunday belongs to the preceding Monday.
	assert.Equal(t, day(2024, time.March, 11), BucketStart(day(2024, time.March, 17), BucketWeekly))
}

func TestBucketStart_MonthlyFirstOfMonth(t *testing.T) {
	assert.Equal(t, day(2024, time.February, 1), BucketStart(day(2024, time.February, 29), BucketMonthly))
}

func TestAggregate_HalfOpenDailyBuckets(t *testing.T) {
	points := []Point{
		{Timestamp: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), Value: 10},
		{Timestamp: time.Date(2024, time.March, 15, 23, 59, 59, 0, time.UTC), Value: 5},
		// Midnight of the 16th falls in the next bucket.
		{Timestamp: time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC), Value: 7},
	}

	out := Aggregate(points, BucketDaily, nil)

	assert.Len(t, out, 2)
	assert.Equal(t, 15.0, out[BucketKey{Start: day(2024, time.March, 15), Scope: GlobalScope}])
	assert.Equal(t, 7.0, out[BucketKey{Start: day(2024, time.March, 16), Scope: GlobalScope}])
}

func TestAggregate_SparseBucketsAbsent(t *testing.T) {
	points := []Point{
		{Timestamp: day(2024, time.March, 1), Value: 1},
		{Timestamp: day(2024, time.March, 10), Value: 2},
	}

	out := Aggregate(points, BucketDaily, nil)

	assert.Len(t, out, 2)
	_, present := out[BucketKey{Start: day(2024, time.March, 5), Scope: GlobalScope}]
	assert.False(t, present)
}

func TestAggregate_ScopeGrouping(t *testing.T) {
	a := snowflake.ID(1)
	b := snowflake.ID(2)
	scopes := map[time.Time]snowflake.ID{
		day(2024, time.March, 1): a,
		day(2024, time.March, 2): b,
	}

	points := []Point{
		{Timestamp: day(2024, time.March, 1), Value: 10},
		{Timestamp: day(2024, time.March, 2), Value: 20},
	}

	out := Aggregate(points, BucketMonthly, func(p Point) ScopeKey {
		return BuildingScope(scopes[p.Timestamp])
	})

	assert.Len(t, out, 2)
	assert.Equal(t, 10.0, out[BucketKey{Start: day(2024, time.March, 1), Scope: BuildingScope(a)}])
	assert.Equal(t, 20.0, out[BucketKey{Start: day(2024, time.March, 1), Scope: BuildingScope(b)}])
}

func TestAggregate_OrderIndependent(t *testing.T) {
	forward := []Point{
		{Timestamp: day(2024, time.March, 4), Value: 1},
		{Timestamp: day(2024, time.March, 5), Value: 2},
		{Timestamp: day(2024, time.March, 6), Value: 3},
	}
	reversed := []Point{forward[2], forward[1], forward[0]}

	assert.Equal(t, Aggregate(forward, BucketWeekly, nil), Aggregate(reversed, BucketWeekly, nil))
}

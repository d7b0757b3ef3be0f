package analytics

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Bucket is the time granularity for aggregation.
type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketWeekly  Bucket = "weekly"
	BucketMonthly Bucket = "monthly"
)

// Valid reports whether the bucket granularity is known.
func (b Bucket) Valid() bool {
	return b == BucketDaily || b == BucketWeekly || b == BucketMonthly
}

// ScopeKey identifies the population a value belongs to: the whole campus,
// one zone, or one building.
type ScopeKey string

// GlobalScope covers every building.
const GlobalScope ScopeKey = "global"

// ZoneScope keys a named campus zone.
func ZoneScope(zone string) ScopeKey {
	return ScopeKey("zone:" + zone)
}

// BuildingScope keys a single building.
func BuildingScope(id snowflake.ID) ScopeKey {
	return ScopeKey(fmt.Sprintf("building:%s", id))
}

// Point is one timestamped value of a series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// BucketKey addresses one aggregated cell: the bucket start plus the scope.
type BucketKey struct {
	Start time.Time
	Scope ScopeKey
}

// Aggregate sums points into half-open [start, start+period) buckets, grouped
// by the scope the resolver assigns each point. Buckets with no points are
// absent from the result; callers wanting dense series fill gaps themselves.
// Pure function: no side effects, input order does not matter for sums.
func Aggregate(points []Point, bucket Bucket, scopeFn func(Point) ScopeKey) map[BucketKey]float64 {
	if scopeFn == nil {
		scopeFn = func(Point) ScopeKey { return GlobalScope }
	}

	out := make(map[BucketKey]float64)
	for _, p := range points {
		key := BucketKey{
			Start: BucketStart(p.Timestamp, bucket),
			Scope: scopeFn(p),
		}
		out[key] += p.Value
	}
	return out
}

// BucketStart truncates a timestamp to its bucket boundary: midnight for
// daily, the preceding Monday midnight for weekly, the first of the month
// for monthly. The timestamp's own location is kept; stored values are
// assumed normalized upstream.
func BucketStart(t time.Time, bucket Bucket) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())

	switch bucket {
	case BucketWeekly:
		// time.Weekday counts Sunday=0; shift so weeks start Monday.
		offset := (int(midnight.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset)
	case BucketMonthly:
		return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	default:
		return midnight
	}
}

// Package analytics holds the pure numeric core: descriptive statistics,
// trend series, and time-bucket aggregation over ordered reading values.
package analytics

import (
	"math"
	"sort"
)

const (
	// DefaultMovingWindow is the trailing moving-average window in points.
	DefaultMovingWindow = 7
	// DefaultZScoreThreshold marks a point anomalous when |z| exceeds it.
	DefaultZScoreThreshold = 2.5
)

// DescribeOptions tunes a Describe pass.
type DescribeOptions struct {
	// Window is the trailing moving-average window; <=0 falls back to
	// DefaultMovingWindow.
	Window int
	// ZScoreThreshold flags anomalies; <=0 falls back to DefaultZScoreThreshold.
	ZScoreThreshold float64
	// AbsoluteThreshold, when non-nil, counts points strictly above it as
	// breaches. Nil skips breach counting; a zero threshold still counts
	// every positive point.
	AbsoluteThreshold *float64
}

// SeriesStats is the full statistical description of one ordered series.
// An empty series yields the zero value: every statistic is 0 and the
// per-point slices are empty. Callers never need nil checks.
type SeriesStats struct {
	SampleSize int
	Mean       float64
	Median     float64
	// Variance is population variance (denominator n, not n-1).
	Variance float64
	StdDev   float64

	MovingAverage []float64
	CumulativeSum []float64
	// ZScores is 0 at every index when StdDev == 0; a constant series has
	// no anomalies.
	ZScores []float64

	AnomaliesDetected int
	ThresholdBreaches int
}

// Describe computes every statistic in one pass over an already time-ordered
// value series. It holds no state and never fails: n=0 degenerates to
// zero-valued stats rather than dividing by zero.
func Describe(values []float64, opts DescribeOptions) SeriesStats {
	window := opts.Window
	if window <= 0 {
		window = DefaultMovingWindow
	}
	zThreshold := opts.ZScoreThreshold
	if zThreshold <= 0 {
		zThreshold = DefaultZScoreThreshold
	}

	n := len(values)
	if n == 0 {
		return SeriesStats{}
	}

	stats := SeriesStats{
		SampleSize:    n,
		MovingAverage: make([]float64, n),
		CumulativeSum: make([]float64, n),
		ZScores:       make([]float64, n),
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	stats.Mean = sum / float64(n)
	stats.Median = median(values)

	var sq float64
	for _, v := range values {
		d := v - stats.Mean
		sq += d * d
	}
	stats.Variance = sq / float64(n)
	stats.StdDev = math.Sqrt(stats.Variance)

	var running, windowSum float64
	for i, v := range values {
		running += v
		stats.CumulativeSum[i] = running

		windowSum += v
		if i >= window {
			windowSum -= values[i-window]
		}
		span := i + 1
		if span > window {
			span = window
		}
		stats.MovingAverage[i] = windowSum / float64(span)

		if stats.StdDev > 0 {
			stats.ZScores[i] = (v - stats.Mean) / stats.StdDev
		}
		if math.Abs(stats.ZScores[i]) > zThreshold {
			stats.AnomaliesDetected++
		}
		if opts.AbsoluteThreshold != nil && v > *opts.AbsoluteThreshold {
			stats.ThresholdBreaches++
		}
	}

	return stats
}

// ZScore returns how many standard deviations value lies from the mean of
// baseline, using population std-dev. A flat or empty baseline yields 0.
func ZScore(value float64, baseline []float64) float64 {
	if len(baseline) == 0 {
		return 0
	}
	stats := Describe(baseline, DescribeOptions{})
	if stats.StdDev == 0 {
		return 0
	}
	return (value - stats.Mean) / stats.StdDev
}

// RateOfChange returns the percent change from previous to latest and
// whether that percentage is defined. previous == 0 yields defined=false;
// callers decide how to treat a jump from zero (the rule evaluator flags it
// as a breach whenever latest > 0).
func RateOfChange(previous, latest float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (latest - previous) / previous * 100, true
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

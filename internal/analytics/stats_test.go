package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe_EmptySeries(t *testing.T) {
	stats := Describe(nil, DescribeOptions{})

	assert.Equal(t, 0, stats.SampleSize)
	assert.Zero(t, stats.Mean)
	assert.Zero(t, stats.Median)
	assert.Zero(t, stats.Variance)
	assert.Zero(t, stats.StdDev)
	assert.Empty(t, stats.MovingAverage)
	assert.Empty(t, stats.CumulativeSum)
	assert.Empty(t, stats.ZScores)
	assert.Zero(t, stats.AnomaliesDetected)
	assert.Zero(t, stats.ThresholdBreaches)
}

func TestDescribe_ConstantSeries(t *testing.T) {
	stats := Describe([]float64{5, 5, 5, 5}, DescribeOptions{})

	assert.Equal(t, 4, stats.SampleSize)
	assert.Equal(t, 5.0, stats.Mean)
	assert.Equal(t, 5.0, stats.Median)
	assert.Zero(t, stats.Variance)
	assert.Zero(t, stats.StdDev)
	for _, z := range stats.ZScores {
		assert.Zero(t, z)
	}
	assert.Zero(t, stats.AnomaliesDetected)
}

func TestDescribe_PopulationVariance(t *testing.T) {
	// mean 4, squared deviations 4+0+4 = 8, population variance 8/3
	stats := Describe([]float64{2, 4, 6}, DescribeOptions{})

	assert.Equal(t, 4.0, stats.Mean)
	assert.InDelta(t, 8.0/3.0, stats.Variance, 1e-9)
}

func TestDescribe_MedianEvenAndOdd(t *testing.T) {
	odd := Describe([]float64{9, 1, 5}, DescribeOptions{})
	assert.Equal(t, 5.0, odd.Median)

	even := Describe([]float64{4, 1, 3, 2}, DescribeOptions{})
	assert.Equal(t, 2.5, even.Median)
}

func TestDescribe_CumulativeSum(t *testing.T) {
	stats := Describe([]float64{1, 2, 3}, DescribeOptions{})

	assert.Equal(t, []float64{1, 3, 6}, stats.CumulativeSum)
}

func TestDescribe_MovingAverageShortPrefix(t *testing.T) {
	stats := Describe([]float64{2, 4, 6, 8}, DescribeOptions{Window: 3})

	// Indexes before the window fills average what exists so far.
	assert.InDelta(t, 2.0, stats.MovingAverage[0], 1e-9)
	assert.InDelta(t, 3.0, stats.MovingAverage[1], 1e-9)
	assert.InDelta(t, 4.0, stats.MovingAverage[2], 1e-9)
	assert.InDelta(t, 6.0, stats.MovingAverage[3], 1e-9)
}

func TestDescribe_MovingAverageWindowOne(t *testing.T) {
	values := []float64{7, 3, 9}
	stats := Describe(values, DescribeOptions{Window: 1})

	assert.Equal(t, values, stats.MovingAverage)
}

func TestDescribe_AnomalyCounting(t *testing.T) {
	// One extreme point among a tight cluster crosses |z| > 2.5.
	values := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100}
	stats := Describe(values, DescribeOptions{})

	assert.Equal(t, 1, stats.AnomaliesDetected)
}

func TestDescribe_ThresholdBreaches(t *testing.T) {
	threshold := 100.0
	stats := Describe([]float64{50, 120, 80, 130}, DescribeOptions{AbsoluteThreshold: &threshold})

	assert.Equal(t, 2, stats.ThresholdBreaches)
}

func TestDescribe_ZeroThresholdCountsPositives(t *testing.T) {
	threshold := 0.0
	stats := Describe([]float64{0, 2, 5}, DescribeOptions{AbsoluteThreshold: &threshold})

	assert.Equal(t, 2, stats.ThresholdBreaches)
}

func TestDescribe_NilThresholdSkipsBreachCounting(t *testing.T) {
	stats := Describe([]float64{50, 120, 80, 130}, DescribeOptions{})

	assert.Zero(t, stats.ThresholdBreaches)
}

func TestZScore(t *testing.T) {
	// baseline mean 10, population stddev 0 -> flat baseline yields 0
	assert.Zero(t, ZScore(50, []float64{10, 10, 10}))
	assert.Zero(t, ZScore(50, nil))

	// baseline [2,4,6]: mean 4, stddev sqrt(8/3)
	z := ZScore(8, []float64{2, 4, 6})
	assert.InDelta(t, 2.449, z, 0.001)
}

func TestRateOfChange(t *testing.T) {
	pct, ok := RateOfChange(100, 150)
	assert.True(t, ok)
	assert.InDelta(t, 50.0, pct, 1e-9)

	pct, ok = RateOfChange(100, 50)
	assert.True(t, ok)
	assert.InDelta(t, -50.0, pct, 1e-9)

	_, ok = RateOfChange(0, 10)
	assert.False(t, ok)
}

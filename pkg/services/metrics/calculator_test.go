package metrics

import (
	"math"
	"testing"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageOf(t *testing.T) {
	tests := []struct {
		name     string
		part     float64
		total    float64
		expected domain.Number
	}{
		{name: "simple share", part: 25, total: 200, expected: domain.Num(12.5)},
		{name: "whole", part: 520000, total: 520000, expected: domain.Num(100)},
		{name: "zero part", part: 0, total: 10, expected: domain.Num(0)},
		{name: "zero total", part: 10, total: 0, expected: domain.NA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PercentageOf(tt.part, tt.total))
		})
	}
}

func TestPercentageOf_ZeroTotalIsAlwaysSentinel(t *testing.T) {
	for _, part := range []float64{0, 1, -1, 1e12, math.MaxFloat64, math.Inf(1), math.NaN()} {
		got := PercentageOf(part, 0)

		assert.False(t, got.Valid)
		assert.Equal(t, domain.NotAvailable, got.String())
		assert.False(t, math.IsNaN(got.Value))
		assert.False(t, math.IsInf(got.Value, 0))
	}
}

func TestYearOverYearChange(t *testing.T) {
	t.Run("growth", func(t *testing.T) {
		c := YearOverYearChange(110, 100)

		assert.Equal(t, 10.0, c.Delta)
		assert.Equal(t, domain.Num(10), c.Percent)
		assert.True(t, c.IsPositive)
		assert.Equal(t, "up", c.Direction())
	})

	t.Run("decline", func(t *testing.T) {
		c := YearOverYearChange(75, 100)

		assert.Equal(t, -25.0, c.Delta)
		assert.Equal(t, domain.Num(-25), c.Percent)
		assert.False(t, c.IsPositive)
		assert.Equal(t, "down", c.Direction())
	})

	t.Run("no change counts as positive", func(t *testing.T) {
		c := YearOverYearChange(100, 100)

		assert.True(t, c.IsPositive)
		assert.Equal(t, "unchanged", c.Direction())
	})

	t.Run("zero previous", func(t *testing.T) {
		c := YearOverYearChange(50, 0)

		assert.Equal(t, 50.0, c.Delta)
		assert.Equal(t, domain.NA, c.Percent)
		assert.True(t, c.IsPositive)
	})
}

func TestWeightedAverage(t *testing.T) {
	type row struct{ value, weight float64 }

	value := func(r row) float64 { return r.value }
	weight := func(r row) float64 { return r.weight }

	assert.Equal(t, domain.Num(15), WeightedAverage([]row{{10, 1}, {20, 1}}, value, weight))
	assert.InDelta(t, 16.6667, WeightedAverage([]row{{10, 100}, {20, 200}}, value, weight).Value, 0.001)
	assert.Equal(t, domain.NA, WeightedAverage([]row{{10, 0}}, value, weight))
	assert.Equal(t, domain.NA, WeightedAverage([]row{}, value, weight))
}

func TestCollapseSources(t *testing.T) {
	// Given: canal rows reported twice with different coverage
	sources := []domain.SourceShare{
		{Source: "Canals", Area: 100, Percentage: 10},
		{Source: "Tubewells", Area: 600, Percentage: 60},
		{Source: " canals ", Area: 300, Percentage: 30},
		{Source: "Tanks", Percentage: 4},
		{Source: "tanks", Percentage: 6},
	}

	// When
	collapsed := CollapseSources(sources)

	// Then
	require.Len(t, collapsed, 3)
	assert.Equal(t, "Canals", collapsed[0].Source)
	assert.Equal(t, 400.0, collapsed[0].Area)
	assert.InDelta(t, 25.0, collapsed[0].Percentage, 1e-9)
	assert.Equal(t, "Tubewells", collapsed[1].Source)
	assert.Equal(t, 60.0, collapsed[1].Percentage)
	assert.Equal(t, "Tanks", collapsed[2].Source)
	assert.InDelta(t, 5.0, collapsed[2].Percentage, 1e-9)
}

func TestSimpsonDiversity(t *testing.T) {
	assert.Equal(t, domain.Num(0), SimpsonDiversity([]float64{100}))
	assert.InDelta(t, 0.5, SimpsonDiversity([]float64{50, 50}).Value, 1e-9)
	assert.InDelta(t, 0.75, SimpsonDiversity([]float64{1, 1, 1, 1}).Value, 1e-9)
	assert.Equal(t, domain.NA, SimpsonDiversity(nil))
}

func TestRankDescending(t *testing.T) {
	values := []domain.Number{domain.Num(40), domain.NA, domain.Num(90), domain.Num(40), domain.Num(10)}

	assert.Equal(t, []int{2, 0, 1, 2, 4}, RankDescending(values))
}

func TestCheckPercentages(t *testing.T) {
	assert.NoError(t, CheckPercentages("ok", []float64{60, 25, 15}))
	assert.NoError(t, CheckPercentages("rounded", []float64{33.3, 33.3, 33.3}))
	assert.Error(t, CheckPercentages("short", []float64{60, 25}))
	assert.Error(t, CheckPercentages("negative", []float64{110, -10}))
}

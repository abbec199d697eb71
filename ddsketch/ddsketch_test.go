// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsewatch/ddsketch-go/ddsketch/mapping"
)

func relativeError(expected, actual float64) float64 {
	if expected == 0 {
		return math.Abs(actual)
	}
	return math.Abs(expected-actual) / math.Abs(expected)
}

// TestUniformIntegersNoCollapse checks that a sketch fed 1..1000 with
// alpha=0.01 and no collapse answers the usual quantiles within the
// configured relative accuracy.
func TestUniformIntegersNoCollapse(t *testing.T) {
	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	for i := 1; i <= 1000; i++ {
		require.NoError(t, s.Add(float64(i)))
	}

	cases := map[float64]float64{
		0.1:  99.5,
		0.5:  499.5,
		0.9:  899.5,
		0.99: 989.5,
	}
	for q, expected := range cases {
		actual, err := s.GetValueAtQuantile(q)
		require.NoError(t, err)
		assert.LessOrEqualf(t, relativeError(expected, actual), 0.01, "q=%v expected=%v actual=%v", q, expected, actual)
	}
}

// TestMergeEquivalence checks that a sketch fed a seeded sample stream in
// one go answers every quantile bitwise-identically to two sketches over a
// split of that stream merged back together.
func TestMergeEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = rng.NormFloat64() * 100
	}

	whole, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	for _, v := range samples {
		require.NoError(t, whole.Add(v))
	}

	half1, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	half2, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	mid := len(samples) / 2
	for _, v := range samples[:mid] {
		require.NoError(t, half1.Add(v))
	}
	for _, v := range samples[mid:] {
		require.NoError(t, half2.Add(v))
	}
	require.NoError(t, half1.MergeWith(half2))

	for _, q := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99, 1} {
		wantVal, err := whole.GetValueAtQuantile(q)
		require.NoError(t, err)
		gotVal, err := half1.GetValueAtQuantile(q)
		require.NoError(t, err)
		assert.Equal(t, wantVal, gotVal, "q=%v", q)
	}
}

// TestNegativeValues checks quantile, min and max on a stream of negative values.
func TestNegativeValues(t *testing.T) {
	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	for i := 1; i <= 1000; i++ {
		require.NoError(t, s.Add(-float64(i)))
	}

	y, err := s.GetValueAtQuantile(0.5)
	require.NoError(t, err)
	assert.LessOrEqual(t, math.Abs(y-(-500.5)), 0.01*500.5)

	min, err := s.GetMinValue()
	require.NoError(t, err)
	assert.Equal(t, float64(-1000), min)

	max, err := s.GetMaxValue()
	require.NoError(t, err)
	assert.Equal(t, float64(-1), max)
}

// TestZeroHandling checks that values within the zero threshold collapse
// into the zero bucket regardless of sign.
func TestZeroHandling(t *testing.T) {
	s, err := NewSketch(Config{RelativeAccuracy: 0.01, MappingVariant: mapping.Logarithmic, ZeroThreshold: 1e-9})
	require.NoError(t, err)
	for _, v := range []float64{0.0, 1e-12, -1e-12, 1} {
		require.NoError(t, s.Add(v))
	}

	assert.Equal(t, float64(3), s.zeroCount)
	assert.Equal(t, float64(1), s.positiveStore.TotalCount())

	q25, err := s.GetValueAtQuantile(0.25)
	require.NoError(t, err)
	assert.Equal(t, float64(0), q25)

	// q=1 is tracked exactly (the true max), independent of bucket
	// boundaries: with only 4 samples the rank for q=0.99 (2.97 out of a
	// possible [0,3)) still falls inside the 3-wide zero bucket, so the
	// interesting boundary check is at q=1.
	top, err := s.GetValueAtQuantile(1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), top)
}

// TestCollapseBound checks that a bin-limited sketch stays within its bin
// limit while still tracking exact min/max.
func TestCollapseBound(t *testing.T) {
	s, err := LogCollapsingLowestDenseDDSketch(0.01, 128)
	require.NoError(t, err)
	for i := 1; i <= 1000; i++ {
		require.NoError(t, s.Add(math.Pow(2, float64(i))))
	}

	count := 0
	for range s.positiveStore.Bins() {
		count++
	}
	assert.LessOrEqual(t, count, 129)

	max, err := s.GetValueAtQuantile(1.0)
	require.NoError(t, err)
	assert.Equal(t, math.Pow(2, 1000), max)

	min, err := s.GetValueAtQuantile(0.0)
	require.NoError(t, err)
	assert.Equal(t, math.Pow(2, 1), min)
}

// TestIncompatibleMerge checks that merging sketches built with different
// mappings fails cleanly and leaves both sketches unchanged.
func TestIncompatibleMerge(t *testing.T) {
	a, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	b, err := NewDefaultDDSketch(0.02)
	require.NoError(t, err)
	require.NoError(t, a.Add(1))
	require.NoError(t, b.Add(2))

	aBefore := a.Copy()
	bBefore := b.Copy()

	err = a.MergeWith(b)
	assert.ErrorIs(t, err, ErrIncompatibleMerge)
	assert.Equal(t, aBefore.count, a.count)
	assert.Equal(t, bBefore.count, b.count)
}

func TestAddRejectsNonFiniteAndNonPositiveWeight(t *testing.T) {
	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Add(math.NaN()), ErrInvalidValue)
	assert.ErrorIs(t, s.Add(math.Inf(1)), ErrInvalidValue)
	assert.ErrorIs(t, s.AddWithCount(1, 0), ErrInvalidWeight)
	assert.ErrorIs(t, s.AddWithCount(1, -1), ErrInvalidWeight)
	assert.True(t, s.IsEmpty())
}

func TestQuantileOnEmptySketch(t *testing.T) {
	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	_, err = s.GetValueAtQuantile(0.5)
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = s.GetAvg()
	assert.ErrorIs(t, err, ErrEmptySketch)
}

func TestInvalidQuantile(t *testing.T) {
	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	require.NoError(t, s.Add(1))
	_, err = s.GetValueAtQuantile(-0.1)
	assert.ErrorIs(t, err, ErrInvalidQuantile)
	_, err = s.GetValueAtQuantile(1.1)
	assert.ErrorIs(t, err, ErrInvalidQuantile)
}

func TestSumAvgCount(t *testing.T) {
	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	for _, v := range []float64{1, 2, 3, 4} {
		require.NoError(t, s.Add(v))
	}
	assert.Equal(t, float64(4), s.GetCount())
	assert.Equal(t, float64(10), s.GetSum())
	avg, err := s.GetAvg()
	require.NoError(t, err)
	assert.Equal(t, float64(2.5), avg)
}

func TestMergeWithEmptyIsNoOp(t *testing.T) {
	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	require.NoError(t, s.Add(5))
	empty, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	require.NoError(t, s.MergeWith(empty))
	assert.Equal(t, float64(1), s.GetCount())
}

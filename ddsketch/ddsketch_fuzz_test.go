// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsewatch/ddsketch-go/dataset"
)

// TestQuantileWithinRelativeAccuracy drives a sketch with randomized
// finite values and checks, for every interior quantile, that the
// returned value is within the configured relative accuracy of the true
// quantile computed by the sorted reference oracle.
func TestQuantileWithinRelativeAccuracy(t *testing.T) {
	const relativeAccuracy = 0.02
	f := fuzz.New().NilChance(0).NumElements(500, 1000).Funcs(
		func(v *float64, c fuzz.Continue) {
			*v = (c.Float64() - 0.5) * 2e6
		},
	)

	var values []float64
	f.Fuzz(&values)

	s, err := NewDefaultDDSketch(relativeAccuracy)
	require.NoError(t, err)
	d := dataset.NewDataset()
	for _, v := range values {
		if v == 0 {
			continue
		}
		require.NoError(t, s.Add(v))
		d.Add(v)
	}
	if d.Count == 0 {
		return
	}

	for _, q := range []float64{0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
		expected := d.Quantile(q)
		actual, err := s.GetValueAtQuantile(q)
		require.NoError(t, err)
		assert.LessOrEqualf(t, relativeError(expected, actual), relativeAccuracy,
			"q=%v expected=%v actual=%v", q, expected, actual)
	}
}

// TestTotalCountMatchesAddedValues checks that total_count equals the
// number of added values exactly for integer weights.
func TestTotalCountMatchesAddedValues(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(100, 400)
	var values []int32
	f.Fuzz(&values)

	s, err := NewDefaultDDSketch(0.01)
	require.NoError(t, err)
	n := 0
	for _, v := range values {
		if v == 0 {
			continue
		}
		require.NoError(t, s.Add(float64(v)))
		n++
	}
	assert.Equal(t, float64(n), s.GetCount())
}

// TestMergeCommutativeWithoutCollapse checks that, absent any collapse,
// merging A into B gives the same answers as merging B into A.
func TestMergeCommutativeWithoutCollapse(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(100, 300).Funcs(
		func(v *float64, c fuzz.Continue) {
			*v = (c.Float64() - 0.5) * 1000
		},
	)
	var as, bs []float64
	f.Fuzz(&as)
	f.Fuzz(&bs)

	build := func(values []float64) (*DDSketch, error) {
		s, err := NewDefaultDDSketch(0.01)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			if v == 0 {
				continue
			}
			if err := s.Add(v); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	ab, err := build(as)
	require.NoError(t, err)
	abOther, err := build(bs)
	require.NoError(t, err)
	require.NoError(t, ab.MergeWith(abOther))

	ba, err := build(bs)
	require.NoError(t, err)
	baOther, err := build(as)
	require.NoError(t, err)
	require.NoError(t, ba.MergeWith(baOther))

	if ab.IsEmpty() {
		return
	}
	for _, q := range []float64{0, 0.25, 0.5, 0.75, 1} {
		v1, err := ab.GetValueAtQuantile(q)
		require.NoError(t, err)
		v2, err := ba.GetValueAtQuantile(q)
		require.NoError(t, err)
		assert.Equal(t, v1, v2, "q=%v", q)
	}
}

// TestCollapsingSketchBinsNeverExceedLimit drives a bin-limited sketch
// with a wide randomized range of magnitudes and checks the per-store
// collapse bound holds under Add.
func TestCollapsingSketchBinsNeverExceedLimit(t *testing.T) {
	const binLimit = 64
	f := fuzz.New().NilChance(0).NumElements(500, 1500).Funcs(
		func(v *float64, c fuzz.Continue) {
			exp := c.Float64()*40 - 20
			sign := 1.0
			if c.Intn(2) == 0 {
				sign = -1.0
			}
			*v = sign * math.Pow(2, exp)
		},
	)
	var values []float64
	f.Fuzz(&values)

	s, err := LogCollapsingLowestDenseDDSketch(0.01, binLimit)
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, s.Add(v))
	}

	posBins, negBins := 0, 0
	for range s.positiveStore.Bins() {
		posBins++
	}
	for range s.negativeStore.Bins() {
		negBins++
	}
	assert.LessOrEqual(t, posBins, binLimit+1)
	assert.LessOrEqual(t, negBins, binLimit+1)
}

// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

// Package ddsketch implements a relative-error quantile sketch: a mergeable
// summary of a stream of real-valued samples that answers rank queries
// (quantile q in [0,1]) with a value whose relative error is bounded by a
// configured accuracy.
package ddsketch

import (
	"errors"
	"math"

	"github.com/pulsewatch/ddsketch-go/ddsketch/mapping"
	"github.com/pulsewatch/ddsketch-go/ddsketch/store"
)

// DDSketch composes one IndexMapping, two BinStores (one for positive
// values, one for negative values reached via the mapping applied to their
// magnitude), and the scalar accumulators that make min/max/sum/count
// queries exact and cheap rather than reconstructed from bucket centres.
type DDSketch struct {
	mapping       mapping.IndexMapping
	positiveStore store.Store
	negativeStore store.Store
	zeroThreshold float64
	zeroCount     float64
	sum           float64
	min           float64
	max           float64
	count         float64
}

// CollapseMode selects which tail, if any, a sketch's stores collapse when
// the configured bin limit is exceeded.
type CollapseMode int

const (
	CollapseNone CollapseMode = iota
	CollapseLowest
	CollapseHighest
)

// Config parameterises sketch construction. It is the sketch's entire
// configuration surface: there is no config file, environment variable, or
// CLI binding layered on top of it.
type Config struct {
	// RelativeAccuracy is alpha in (0, 1); gamma = (1+alpha)/(1-alpha) is
	// the ratio between consecutive bucket boundaries.
	RelativeAccuracy float64
	// BinLimit bounds the number of live bins per store. Ignored when
	// Collapse is CollapseNone.
	BinLimit int
	// MappingVariant selects the index mapping implementation.
	MappingVariant mapping.Variant
	// Collapse selects the store collapse policy, applied identically to
	// the positive and negative stores.
	Collapse CollapseMode
	// ZeroThreshold overrides the magnitude below which a value folds into
	// the zero bucket instead of being indexed. Zero means "use the
	// mapping's own MinIndexableValue()", which for typical relative
	// accuracies is many orders of magnitude smaller than any value a real
	// workload would call "effectively zero" — callers that want a coarser
	// cutoff (e.g. to treat sub-nanosecond timings as zero) set this
	// explicitly instead of distorting RelativeAccuracy to get there.
	ZeroThreshold float64
}

// NewSketch builds a DDSketch from a Config, constructing the requested
// mapping variant and a pair of stores (positive and negative) under the
// requested collapse policy.
func NewSketch(cfg Config) (*DDSketch, error) {
	m, err := newMapping(cfg.MappingVariant, cfg.RelativeAccuracy)
	if err != nil {
		return nil, err
	}
	if cfg.Collapse != CollapseNone && cfg.BinLimit <= 0 {
		return nil, errors.New("ddsketch: bin limit must be positive when a collapse policy is set")
	}
	s := NewDDSketch(m, newStore(cfg), newStore(cfg))
	if cfg.ZeroThreshold > 0 {
		s.zeroThreshold = cfg.ZeroThreshold
	}
	return s, nil
}

func newMapping(variant mapping.Variant, relativeAccuracy float64) (mapping.IndexMapping, error) {
	switch variant {
	case mapping.LinearlyInterpolated:
		return mapping.NewLinearlyInterpolatedMapping(relativeAccuracy)
	case mapping.CubicallyInterpolated:
		return mapping.NewCubicallyInterpolatedMapping(relativeAccuracy)
	default:
		return mapping.NewLogarithmicMapping(relativeAccuracy)
	}
}

func newStore(cfg Config) store.Store {
	switch cfg.Collapse {
	case CollapseLowest:
		return store.NewCollapsingLowestDenseStore(cfg.BinLimit)
	case CollapseHighest:
		return store.NewCollapsingHighestDenseStore(cfg.BinLimit)
	default:
		return store.NewDenseStore()
	}
}

// NewDDSketch assembles a sketch directly from a mapping and a pair of
// stores, for callers that want a combination NewSketch doesn't expose
// (e.g. an unbounded-sparse store on one side only).
func NewDDSketch(m mapping.IndexMapping, positiveStore, negativeStore store.Store) *DDSketch {
	return &DDSketch{
		mapping:       m,
		positiveStore: positiveStore,
		negativeStore: negativeStore,
		zeroThreshold: m.MinIndexableValue(),
	}
}

// NewDefaultDDSketch constructs a sketch with logarithmic mapping and
// unbounded (non-collapsing) dense stores.
func NewDefaultDDSketch(relativeAccuracy float64) (*DDSketch, error) {
	return LogUnboundedDenseDDSketch(relativeAccuracy)
}

// LogUnboundedDenseDDSketch constructs an instance of DDSketch that offers
// constant-time insertion and whose size grows indefinitely to accommodate
// the range of input values.
func LogUnboundedDenseDDSketch(relativeAccuracy float64) (*DDSketch, error) {
	return NewSketch(Config{RelativeAccuracy: relativeAccuracy, MappingVariant: mapping.Logarithmic, Collapse: CollapseNone})
}

// LogCollapsingLowestDenseDDSketch constructs an instance of DDSketch that
// offers constant-time insertion and whose size grows until maxNumBins is
// reached, at which point the lowest-indexed bins are collapsed. This loses
// the relative accuracy guarantee on the lowest quantiles of all-positive
// streams, or the mid-range quantiles closest to zero when values include
// negative numbers.
func LogCollapsingLowestDenseDDSketch(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	return NewSketch(Config{RelativeAccuracy: relativeAccuracy, BinLimit: maxNumBins, MappingVariant: mapping.Logarithmic, Collapse: CollapseLowest})
}

// LogCollapsingHighestDenseDDSketch is the mirror of
// LogCollapsingLowestDenseDDSketch: the highest-indexed bins collapse
// instead, losing accuracy on the highest quantiles of all-positive
// streams, or the lowest and highest quantiles when values include
// negative numbers.
func LogCollapsingHighestDenseDDSketch(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	return NewSketch(Config{RelativeAccuracy: relativeAccuracy, BinLimit: maxNumBins, MappingVariant: mapping.Logarithmic, Collapse: CollapseHighest})
}

// Add adds a value to the sketch with a weight of 1.
func (s *DDSketch) Add(value float64) error {
	return s.AddWithCount(value, 1)
}

// AddWithCount adds a value to the sketch with the given positive,
// real-valued weight.
func (s *DDSketch) AddWithCount(value float64, count float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidValue
	}
	if count <= 0 {
		return ErrInvalidWeight
	}

	wasEmpty := s.count == 0
	switch {
	case value > s.zeroThreshold:
		s.positiveStore.AddWithCount(s.mapping.Index(value), count)
	case value < -s.zeroThreshold:
		s.negativeStore.AddWithCount(s.mapping.Index(-value), count)
	default:
		s.zeroCount += count
	}

	s.count += count
	s.sum += value * count
	if wasEmpty || value < s.min {
		s.min = value
	}
	if wasEmpty || value > s.max {
		s.max = value
	}
	return nil
}

// Copy returns a deep copy of this sketch.
func (s *DDSketch) Copy() *DDSketch {
	return &DDSketch{
		mapping:       s.mapping,
		positiveStore: s.positiveStore.Copy(),
		negativeStore: s.negativeStore.Copy(),
		zeroThreshold: s.zeroThreshold,
		zeroCount:     s.zeroCount,
		sum:           s.sum,
		min:           s.min,
		max:           s.max,
		count:         s.count,
	}
}

// GetValueAtQuantile returns the value at the specified quantile. Returns a
// non-nil error if the quantile is invalid or the sketch is empty.
//
// q=0 and q=1 return the exactly-tracked min and max directly: they do not
// go through bucket reconstruction, so they are exact rather than
// relative-error-bounded.
func (s *DDSketch) GetValueAtQuantile(quantile float64) (float64, error) {
	if quantile < 0 || quantile > 1 {
		return math.NaN(), ErrInvalidQuantile
	}
	if s.count == 0 {
		return math.NaN(), ErrEmptySketch
	}
	if quantile == 0 {
		return s.min, nil
	}
	if quantile == 1 {
		return s.max, nil
	}

	rank := quantile * (s.count - 1)
	negativeCount := s.negativeStore.TotalCount()
	switch {
	case rank < negativeCount:
		// The negative store indexes magnitudes, so its highest key is the
		// most negative (smallest) value: scan it from the top down.
		key := s.negativeStore.KeyAtDescendingRank(rank)
		return -s.mapping.Value(key), nil
	case rank < negativeCount+s.zeroCount:
		return 0, nil
	default:
		key := s.positiveStore.KeyAtRank(rank - negativeCount - s.zeroCount)
		return s.mapping.Value(key), nil
	}
}

// GetValuesAtQuantiles returns the values at the respective quantiles.
// Returns a non-nil error if any quantile is invalid or the sketch is
// empty.
func (s *DDSketch) GetValuesAtQuantiles(quantiles []float64) ([]float64, error) {
	values := make([]float64, len(quantiles))
	for i, q := range quantiles {
		v, err := s.GetValueAtQuantile(q)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// GetCount returns the total number of values (weighted) added to this
// sketch.
func (s *DDSketch) GetCount() float64 {
	return s.count
}

// IsEmpty returns true iff no value has been added to this sketch.
func (s *DDSketch) IsEmpty() bool {
	return s.count == 0
}

// GetSum returns the sum of all values added to this sketch, weighted.
func (s *DDSketch) GetSum() float64 {
	return s.sum
}

// GetAvg returns GetSum()/GetCount(). Returns a non-nil error if the sketch
// is empty.
func (s *DDSketch) GetAvg() (float64, error) {
	if s.count == 0 {
		return math.NaN(), ErrEmptySketch
	}
	return s.sum / s.count, nil
}

// GetMinValue returns the minimum value added to this sketch. Returns a
// non-nil error if the sketch is empty.
func (s *DDSketch) GetMinValue() (float64, error) {
	if s.count == 0 {
		return math.NaN(), ErrEmptySketch
	}
	return s.min, nil
}

// GetMaxValue returns the maximum value added to this sketch. Returns a
// non-nil error if the sketch is empty.
func (s *DDSketch) GetMaxValue() (float64, error) {
	if s.count == 0 {
		return math.NaN(), ErrEmptySketch
	}
	return s.max, nil
}

// MergeWith merges the other sketch into this one. After this operation,
// this sketch encodes the values that were added to both this and the
// other sketches. The other sketch is left unchanged.
func (s *DDSketch) MergeWith(other *DDSketch) error {
	if other.count == 0 {
		return nil
	}
	if !s.mapping.Equals(other.mapping) {
		return ErrIncompatibleMerge
	}

	wasEmpty := s.count == 0
	s.positiveStore.MergeWith(other.positiveStore)
	s.negativeStore.MergeWith(other.negativeStore)
	s.zeroCount += other.zeroCount
	s.count += other.count
	s.sum += other.sum
	if wasEmpty || other.min < s.min {
		s.min = other.min
	}
	if wasEmpty || other.max > s.max {
		s.max = other.max
	}
	return nil
}

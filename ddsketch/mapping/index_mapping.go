// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package mapping

import (
	"errors"
	"math"
)

const (
	expOverflow      = 7.094361393031e+02      // The value at which math.Exp overflows
	minNormalFloat64 = 2.2250738585072014e-308 //2^(-1022)
)

// IndexMapping maps positive floating-point values to the integer bucket
// indices of a relative-error quantile sketch, and back. Every implementation
// must satisfy: for x >= MinIndexableValue(), gamma^(Index(x)-1) <= x, and the
// reconstructed Value(Index(x)) differs from x by no more than
// RelativeAccuracy() * x.
type IndexMapping interface {
	Equals(other IndexMapping) bool
	Index(value float64) int
	Value(index int) float64
	RelativeAccuracy() float64
	MinIndexableValue() float64
	MaxIndexableValue() float64
	// ToRecord projects the mapping to its serialisable form: variant tag,
	// gamma to full precision, and the index offset needed to reconstruct
	// identical Index/Value behaviour.
	ToRecord() Record
}

// Variant names the closed set of index mapping implementations.
type Variant int

const (
	Logarithmic Variant = iota
	LinearlyInterpolated
	CubicallyInterpolated
)

func (v Variant) String() string {
	switch v {
	case Logarithmic:
		return "logarithmic"
	case LinearlyInterpolated:
		return "linearly-interpolated"
	case CubicallyInterpolated:
		return "cubically-interpolated"
	default:
		return "unknown"
	}
}

// Record is the logical, language-neutral projection of an IndexMapping:
// enough state to reconstruct identical Index/Value behaviour without
// re-deriving it from a user-supplied relative accuracy.
type Record struct {
	Variant     Variant
	Gamma       float64
	IndexOffset float64
}

// FromRecord reconstructs the IndexMapping a record was produced from.
func FromRecord(r Record) (IndexMapping, error) {
	switch r.Variant {
	case Logarithmic:
		return NewLogarithmicMappingWithGamma(r.Gamma, r.IndexOffset)
	case LinearlyInterpolated:
		return NewLinearlyInterpolatedMappingWithGamma(r.Gamma, r.IndexOffset)
	case CubicallyInterpolated:
		return NewCubicallyInterpolatedMappingWithGamma(r.Gamma, r.IndexOffset)
	default:
		return nil, errors.New("mapping: unknown variant in record")
	}
}

func withinTolerance(x, y, tolerance float64) bool {
	if x == 0 || y == 0 {
		return math.Abs(x) <= tolerance && math.Abs(y) <= tolerance
	}
	return math.Abs(x-y) <= tolerance*math.Max(math.Abs(x), math.Abs(y))
}

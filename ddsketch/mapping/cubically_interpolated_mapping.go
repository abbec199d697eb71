// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// Cubic interpolation coefficients approximating log2(1+s) for s in [0, 1)
// by A*s^3 + B*s^2 + C*s, chosen so that the approximation is exact at the
// interval endpoints (s=0 and s=1) and its maximum absolute error over the
// interval is minimised. These are the same constants the wider
// DataDog/sketches family uses for this mapping.
const (
	cubicA = 6.0 / 35.0
	cubicB = -3.0 / 5.0
	cubicC = 10.0 / 7.0
)

// A fast IndexMapping that approximates log2 of the mantissa with a cubic
// polynomial instead of the linear one LinearlyInterpolatedMapping uses, so
// the approximation tracks log2 much more closely over m in [1,2). As with
// the other mappings, the worst-case relative error of Value(Index(x)) equals
// the target relative accuracy. With the multiplier C/ln(gamma) used here,
// this mapping spends more indices per power of two than the linear mapping
// (about 72 against 50 at a relative accuracy of 0.01).
type CubicallyInterpolatedMapping struct {
	relativeAccuracy      float64
	multiplier            float64
	normalizedIndexOffset float64
}

func NewCubicallyInterpolatedMapping(relativeAccuracy float64) (*CubicallyInterpolatedMapping, error) {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		return nil, errors.New("The relative accuracy must be between 0 and 1.")
	}
	return &CubicallyInterpolatedMapping{
		relativeAccuracy: relativeAccuracy,
		multiplier:       cubicC / math.Log1p(2*relativeAccuracy/(1-relativeAccuracy)),
	}, nil
}

func NewCubicallyInterpolatedMappingWithGamma(gamma, indexOffset float64) (*CubicallyInterpolatedMapping, error) {
	if gamma <= 1 {
		return nil, errors.New("Gamma must be greater than 1.")
	}
	m := CubicallyInterpolatedMapping{
		relativeAccuracy: 1 - 2/(1+math.Exp(math.Log2(gamma))),
		multiplier:       cubicC / math.Log2(gamma),
	}
	m.normalizedIndexOffset = indexOffset - m.approximateLog(1)*m.multiplier
	return &m, nil
}

func (m *CubicallyInterpolatedMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*CubicallyInterpolatedMapping)
	if !ok {
		return false
	}
	tol := 1e-12
	return withinTolerance(m.multiplier, o.multiplier, tol) && withinTolerance(m.normalizedIndexOffset, o.normalizedIndexOffset, tol)
}

func (m *CubicallyInterpolatedMapping) Index(value float64) int {
	index := m.approximateLog(value)*m.multiplier + m.normalizedIndexOffset
	if index >= 0 {
		return int(index)
	} else {
		return int(index) - 1
	}
}

func (m *CubicallyInterpolatedMapping) Value(index int) float64 {
	return m.approximateInverseLog((float64(index)-m.normalizedIndexOffset)/m.multiplier) * (1 + m.relativeAccuracy)
}

// approximateLog returns an approximation of log2(x), obtained by
// decomposing x into exponent + (1+mantissa) and approximating log2(1+s)
// with the cubic A*s^3 + B*s^2 + C*s for s = mantissa.
func (m *CubicallyInterpolatedMapping) approximateLog(x float64) float64 {
	bits := math.Float64bits(x)
	s := getSignificandPlusOne(bits) - 1
	return ((cubicA*s+cubicB)*s+cubicC)*s + getExponent(bits)
}

// approximateInverseLog is the exact inverse of approximateLog, solving the
// cubic for s via Cardano's formula.
func (m *CubicallyInterpolatedMapping) approximateInverseLog(index float64) float64 {
	exponent := math.Floor(index)
	d0 := cubicB*cubicB - 3*cubicA*cubicC
	d1 := 2*cubicB*cubicB*cubicB - 9*cubicA*cubicB*cubicC - 27*cubicA*cubicA*(index-exponent)
	p := math.Cbrt((d1 - math.Sqrt(d1*d1-4*d0*d0*d0)) / 2)
	significandPlusOne := -(cubicB+p+d0/p)/(3*cubicA) + 1
	return buildFloat64(int(exponent), significandPlusOne)
}

func (m *CubicallyInterpolatedMapping) MinIndexableValue() float64 {
	return math.Max(
		math.Exp2((math.MinInt16-m.normalizedIndexOffset)/m.multiplier-m.approximateLog(1)+1),
		minNormalFloat64*(1+m.relativeAccuracy)/(1-m.relativeAccuracy),
	)
}

func (m *CubicallyInterpolatedMapping) MaxIndexableValue() float64 {
	return math.Min(
		math.Exp2((math.MaxInt16-m.normalizedIndexOffset)/m.multiplier-m.approximateLog(float64(1))-1),
		math.Exp(expOverflow)/(1+m.relativeAccuracy),
	)
}

func (m *CubicallyInterpolatedMapping) RelativeAccuracy() float64 {
	return m.relativeAccuracy
}

func (m *CubicallyInterpolatedMapping) gamma() float64 {
	return math.Exp2(cubicC / m.multiplier)
}

func (m *CubicallyInterpolatedMapping) ToRecord() Record {
	return Record{
		Variant:     CubicallyInterpolated,
		Gamma:       m.gamma(),
		IndexOffset: m.normalizedIndexOffset,
	}
}

func (m *CubicallyInterpolatedMapping) string() string {
	var buffer bytes.Buffer
	buffer.WriteString(fmt.Sprintf("relativeAccuracy: %v, multiplier: %v, normalizedIndexOffset: %v\n", m.relativeAccuracy, m.multiplier, m.normalizedIndexOffset))
	return buffer.String()
}

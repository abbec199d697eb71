// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import (
	"github.com/pulsewatch/ddsketch-go/ddsketch/mapping"
	"github.com/pulsewatch/ddsketch-go/ddsketch/store"
)

// Record is the deterministic, language-neutral projection of a DDSketch:
// a mapping record, a store record per side, and the scalar accumulators.
// It is the logical serialisable form; any byte-level wire encoding
// (protobuf, JSON, ...) is a thin adapter over it, and is deliberately not
// part of this package.
type Record struct {
	Mapping       mapping.Record
	PositiveStore store.Record
	NegativeStore store.Record
	ZeroThreshold float64
	ZeroCount     float64
	Sum           float64
	Min           float64
	Max           float64
	Count         float64
}

// ToRecord projects the sketch to its logical record.
func (s *DDSketch) ToRecord() Record {
	return Record{
		Mapping:       s.mapping.ToRecord(),
		PositiveStore: s.positiveStore.ToRecord(),
		NegativeStore: s.negativeStore.ToRecord(),
		ZeroThreshold: s.zeroThreshold,
		ZeroCount:     s.zeroCount,
		Sum:           s.sum,
		Min:           s.min,
		Max:           s.max,
		Count:         s.count,
	}
}

// FromRecord reconstructs a DDSketch from a logical record previously
// produced by ToRecord. The result answers every quantile identically to
// the sketch the record was taken from.
func FromRecord(r Record) (*DDSketch, error) {
	m, err := mapping.FromRecord(r.Mapping)
	if err != nil {
		return nil, err
	}
	positiveStore, err := store.FromRecord(r.PositiveStore)
	if err != nil {
		return nil, err
	}
	negativeStore, err := store.FromRecord(r.NegativeStore)
	if err != nil {
		return nil, err
	}
	zeroThreshold := r.ZeroThreshold
	if zeroThreshold <= 0 {
		zeroThreshold = m.MinIndexableValue()
	}
	return &DDSketch{
		mapping:       m,
		positiveStore: positiveStore,
		negativeStore: negativeStore,
		zeroThreshold: zeroThreshold,
		zeroCount:     r.ZeroCount,
		sum:           r.Sum,
		min:           r.Min,
		max:           r.Max,
		count:         r.Count,
	}, nil
}

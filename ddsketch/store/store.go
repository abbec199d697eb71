// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import "errors"

// Store holds per-bucket-index counts for one side (positive or negative)
// of a sketch. Implementations trade memory bound for accuracy: Variant
// names the closed set (see spec's variant-dispatch note).
type Store interface {
	Add(index int)
	AddWithCount(index int, count float64)
	AddBin(bin Bin)
	IsEmpty() bool
	MaxIndex() (int, error)
	MinIndex() (int, error)
	TotalCount() float64
	// KeyAtRank returns the smallest key k such that the cumulative count of
	// all keys <= k, scanned in ascending order, exceeds rank.
	KeyAtRank(rank float64) int
	// KeyAtDescendingRank is the mirror of KeyAtRank, scanning keys from
	// highest to lowest. Used to read a negative-value store back in order
	// of decreasing magnitude.
	KeyAtDescendingRank(rank float64) int
	MergeWith(other Store)
	Bins() <-chan Bin
	Copy() Store
	// ToRecord projects the store to its serialisable form: a dense,
	// key-ordered count array plus whatever collapse metadata applies to
	// this variant.
	ToRecord() Record
}

// Variant names the closed set of BinStore implementations.
type Variant int

const (
	UnboundedSparse Variant = iota
	UnboundedDense
	CollapsingLowestDense
	CollapsingHighestDense
)

// Record is the logical, language-neutral projection of a Store: variant
// tag, bin limit (0 when not applicable), the offset of Counts[0], the
// dense counts themselves in ascending key order, and the collapsed-tail
// flags.
type Record struct {
	Variant       Variant
	BinLimit      int
	Offset        int
	Counts        []float64
	IsCollapsedLo bool
	IsCollapsedHi bool
}

// FromRecord reconstructs the Store a record was produced from.
func FromRecord(r Record) (Store, error) {
	var s Store
	switch r.Variant {
	case UnboundedSparse:
		s = NewUnboundedSparseStore()
	case UnboundedDense:
		s = NewDenseStore()
	case CollapsingLowestDense:
		if r.BinLimit <= 0 {
			return nil, errors.New("store: collapsing-lowest-dense record missing a positive bin limit")
		}
		s = NewCollapsingLowestDenseStore(r.BinLimit)
	case CollapsingHighestDense:
		if r.BinLimit <= 0 {
			return nil, errors.New("store: collapsing-highest-dense record missing a positive bin limit")
		}
		s = NewCollapsingHighestDenseStore(r.BinLimit)
	default:
		return nil, errors.New("store: unknown variant in record")
	}
	for i, count := range r.Counts {
		if count == 0 {
			continue
		}
		s.AddWithCount(r.Offset+i, count)
	}
	return s, nil
}

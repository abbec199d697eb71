// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import "sort"

// CollapsingHighestDenseStore is the mirror image of
// CollapsingLowestDenseStore: its highest bins get combined into a single
// sentinel bin so that the total number of bins never exceeds maxNumBins.
// Useful when quantiles in the lower tail must remain exact.
//
// It is built by delegating to a CollapsingLowestDenseStore over negated
// indices: negation reverses ascending order, so collapsing the lowest
// negated indices is exactly collapsing the highest original indices. This
// reuses the lowest-dense growth/collapse logic instead of re-deriving a
// second, independently-error-prone copy of the same index arithmetic.
type CollapsingHighestDenseStore struct {
	lowest *CollapsingLowestDenseStore
}

func NewCollapsingHighestDenseStore(maxNumBins int) *CollapsingHighestDenseStore {
	return &CollapsingHighestDenseStore{lowest: NewCollapsingLowestDenseStore(maxNumBins)}
}

func (s *CollapsingHighestDenseStore) Add(index int) {
	s.lowest.Add(-index)
}

func (s *CollapsingHighestDenseStore) AddBin(bin Bin) {
	if bin.Count() == 0 {
		return
	}
	s.lowest.AddWithCount(-bin.Index(), bin.Count())
}

func (s *CollapsingHighestDenseStore) AddWithCount(index int, count float64) {
	s.lowest.AddWithCount(-index, count)
}

func (s *CollapsingHighestDenseStore) IsEmpty() bool {
	return s.lowest.IsEmpty()
}

func (s *CollapsingHighestDenseStore) TotalCount() float64 {
	return s.lowest.TotalCount()
}

func (s *CollapsingHighestDenseStore) MinIndex() (int, error) {
	maxIdx, err := s.lowest.MaxIndex()
	if err != nil {
		return 0, err
	}
	return -maxIdx, nil
}

func (s *CollapsingHighestDenseStore) MaxIndex() (int, error) {
	minIdx, err := s.lowest.MinIndex()
	if err != nil {
		return 0, err
	}
	return -minIdx, nil
}

func (s *CollapsingHighestDenseStore) KeyAtRank(rank float64) int {
	return -s.lowest.KeyAtDescendingRank(rank)
}

func (s *CollapsingHighestDenseStore) KeyAtDescendingRank(rank float64) int {
	return -s.lowest.KeyAtRank(rank)
}

func (s *CollapsingHighestDenseStore) MergeWith(other Store) {
	if other.TotalCount() == 0 {
		return
	}
	o, ok := other.(*CollapsingHighestDenseStore)
	if !ok {
		for bin := range other.Bins() {
			s.AddBin(bin)
		}
		return
	}
	s.lowest.MergeWith(o.lowest)
}

func (s *CollapsingHighestDenseStore) Bins() <-chan Bin {
	ch := make(chan Bin)
	go func() {
		defer close(ch)
		negated := make([]Bin, 0, len(s.lowest.bins))
		for b := range s.lowest.Bins() {
			negated = append(negated, Bin{index: -b.Index(), count: b.Count()})
		}
		sort.Slice(negated, func(i, j int) bool { return negated[i].Index() < negated[j].Index() })
		for _, b := range negated {
			ch <- b
		}
	}()
	return ch
}

func (s *CollapsingHighestDenseStore) Copy() Store {
	c := s.lowest.Copy().(*CollapsingLowestDenseStore)
	return &CollapsingHighestDenseStore{lowest: c}
}

func (s *CollapsingHighestDenseStore) ToRecord() Record {
	inner := s.lowest.ToRecord()
	counts := make([]float64, len(inner.Counts))
	for i, c := range inner.Counts {
		counts[len(counts)-1-i] = c
	}
	offset := 0
	if len(inner.Counts) > 0 {
		offset = -(inner.Offset + len(inner.Counts) - 1)
	}
	return Record{
		Variant:       CollapsingHighestDense,
		BinLimit:      inner.BinLimit,
		Offset:        offset,
		Counts:        counts,
		IsCollapsedHi: inner.IsCollapsedLo,
	}
}

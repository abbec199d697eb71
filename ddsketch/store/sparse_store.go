// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import (
	"errors"
	"math"
	"sort"

	"github.com/kamstrup/intmap"
)

const sparseStoreInitialCapacity = 16

// UnboundedSparseStore holds counts for a potentially unbounded key range
// with no collapse: every distinct bucket index seen gets its own entry.
// Backed by intmap.Map rather than a bare Go map, which avoids the bucket
// and interface overhead map[int]float64 carries for a densely-typed
// integer key space.
type UnboundedSparseStore struct {
	bins     *intmap.Map[int, float64]
	count    float64
	minIndex int
	maxIndex int
}

func NewUnboundedSparseStore() *UnboundedSparseStore {
	return &UnboundedSparseStore{
		bins:     intmap.New[int, float64](sparseStoreInitialCapacity),
		minIndex: math.MaxInt32,
		maxIndex: math.MinInt32,
	}
}

func (s *UnboundedSparseStore) Add(index int) {
	s.AddWithCount(index, 1)
}

func (s *UnboundedSparseStore) AddBin(bin Bin) {
	if bin.Count() == 0 {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *UnboundedSparseStore) AddWithCount(index int, count float64) {
	if count == 0 {
		return
	}
	if index > s.maxIndex {
		s.maxIndex = index
	}
	if index < s.minIndex {
		s.minIndex = index
	}
	existing, _ := s.bins.Get(index)
	s.bins.Put(index, existing+count)
	s.count += count
}

func (s *UnboundedSparseStore) Bins() <-chan Bin {
	ch := make(chan Bin)
	go func() {
		defer close(ch)
		for _, k := range s.sortedKeys() {
			v, _ := s.bins.Get(k)
			ch <- Bin{index: k, count: v}
		}
	}()
	return ch
}

func (s *UnboundedSparseStore) Copy() Store {
	bins := intmap.New[int, float64](s.bins.Len())
	s.bins.ForEach(func(k int, v float64) bool {
		bins.Put(k, v)
		return true
	})
	return &UnboundedSparseStore{
		bins:     bins,
		count:    s.count,
		minIndex: s.minIndex,
		maxIndex: s.maxIndex,
	}
}

func (s *UnboundedSparseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *UnboundedSparseStore) MaxIndex() (int, error) {
	if s.IsEmpty() {
		return 0, errors.New("MaxIndex of empty store is undefined")
	}
	return s.maxIndex, nil
}

func (s *UnboundedSparseStore) MinIndex() (int, error) {
	if s.IsEmpty() {
		return 0, errors.New("MinIndex of empty store is undefined")
	}
	return s.minIndex, nil
}

func (s *UnboundedSparseStore) TotalCount() float64 {
	return s.count
}

func (s *UnboundedSparseStore) sortedKeys() []int {
	keys := make([]int, 0, s.bins.Len())
	s.bins.ForEach(func(k int, _ float64) bool {
		keys = append(keys, k)
		return true
	})
	sort.Ints(keys)
	return keys
}

// KeyAtRank returns the smallest key k such that the cumulative count of
// keys <= k exceeds rank, scanning in ascending key order.
func (s *UnboundedSparseStore) KeyAtRank(rank float64) int {
	if rank < 0 {
		rank = 0
	}
	var n float64
	for _, k := range s.sortedKeys() {
		v, _ := s.bins.Get(k)
		n += v
		if n > rank {
			return k
		}
	}
	return s.maxIndex
}

// KeyAtDescendingRank mirrors KeyAtRank, scanning from the highest key down.
func (s *UnboundedSparseStore) KeyAtDescendingRank(rank float64) int {
	if rank < 0 {
		rank = 0
	}
	keys := s.sortedKeys()
	var n float64
	for i := len(keys) - 1; i >= 0; i-- {
		v, _ := s.bins.Get(keys[i])
		n += v
		if n > rank {
			return keys[i]
		}
	}
	return s.minIndex
}

func (s *UnboundedSparseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	o, ok := other.(*UnboundedSparseStore)
	if !ok {
		for bin := range other.Bins() {
			s.AddBin(bin)
		}
		return
	}
	if o.minIndex < s.minIndex {
		s.minIndex = o.minIndex
	}
	if o.maxIndex > s.maxIndex {
		s.maxIndex = o.maxIndex
	}
	o.bins.ForEach(func(k int, v float64) bool {
		existing, _ := s.bins.Get(k)
		s.bins.Put(k, existing+v)
		return true
	})
	s.count += o.count
}

func (s *UnboundedSparseStore) ToRecord() Record {
	if s.IsEmpty() {
		return Record{Variant: UnboundedSparse}
	}
	counts := make([]float64, s.maxIndex-s.minIndex+1)
	s.bins.ForEach(func(k int, v float64) bool {
		counts[k-s.minIndex] = v
		return true
	})
	return Record{
		Variant: UnboundedSparse,
		Offset:  s.minIndex,
		Counts:  counts,
	}
}

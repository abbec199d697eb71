// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

// CollapsingLowestDenseStore is a dynamically growing contiguous (non-sparse)
// store whose lower bins get combined into a single sentinel bin so that the
// total number of bins never exceeds maxNumBins. Useful when quantiles in
// the upper tail must remain exact.
type CollapsingLowestDenseStore struct {
	DenseStore
	maxNumBins    int
	isCollapsedLo bool
}

func NewCollapsingLowestDenseStore(maxNumBins int) *CollapsingLowestDenseStore {
	// Bins are not allocated until values are added. When the first value
	// is added, a small number of bins are allocated; the slice grows as
	// needed up to maxNumBins.
	return &CollapsingLowestDenseStore{maxNumBins: maxNumBins}
}

func (s *CollapsingLowestDenseStore) Add(index int) {
	s.AddWithCount(index, 1)
}

func (s *CollapsingLowestDenseStore) AddBin(bin Bin) {
	if bin.Count() == 0 {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *CollapsingLowestDenseStore) AddWithCount(index int, count float64) {
	if count == 0 {
		return
	}
	if s.count == 0 {
		s.bins = make([]float64, minInt(growthBuffer, s.maxNumBins))
		s.maxIndex = index
		s.minIndex = index - len(s.bins) + 1
	}
	if index < s.minIndex {
		s.growLeft(index)
	} else if index > s.maxIndex {
		s.growRight(index)
	}
	var idx int
	if index < s.minIndex {
		idx = 0
	} else {
		idx = index - s.minIndex
	}
	s.bins[idx] += count
	s.count += count
}

func (s *CollapsingLowestDenseStore) growLeft(index int) {
	if s.minIndex < index || len(s.bins) >= s.maxNumBins {
		return
	}

	var minIndex int
	if s.maxIndex >= index+s.maxNumBins {
		minIndex = s.maxIndex - s.maxNumBins + 1
	} else {
		// Expand bins by up to an extra growthBuffer bins than strictly required.
		minIndex = maxInt(index-growthBuffer, s.maxIndex-s.maxNumBins+1)
	}
	tmpBins := make([]float64, s.maxIndex-minIndex+1)
	copy(tmpBins[s.minIndex-minIndex:], s.bins)
	s.bins = tmpBins
	s.minIndex = minIndex
	s.isCollapsedLo = true
}

func (s *CollapsingLowestDenseStore) growRight(index int) {
	if s.maxIndex > index {
		return
	}
	if index >= s.maxIndex+s.maxNumBins {
		s.bins = make([]float64, s.maxNumBins)
		s.maxIndex = index
		s.minIndex = index - s.maxNumBins + 1
		s.bins[0] = s.count
		s.isCollapsedLo = true
	} else if index >= s.minIndex+s.maxNumBins {
		minIndex := index - s.maxNumBins + 1
		var n float64
		for i := s.minIndex; i <= minInt(minIndex-1, s.maxIndex); i++ {
			n += s.bins[i-s.minIndex]
		}
		if len(s.bins) < s.maxNumBins {
			tmpBins := make([]float64, s.maxNumBins)
			copy(tmpBins, s.bins[minIndex-s.minIndex:])
			s.bins = tmpBins
		} else {
			copy(s.bins, s.bins[minIndex-s.minIndex:])
			for i := s.maxIndex - minIndex + 1; i < s.maxNumBins; i++ {
				s.bins[i] = 0
			}
		}
		s.maxIndex = index
		s.minIndex = minIndex
		s.bins[0] += n
		s.isCollapsedLo = true
	} else {
		tmpBins := make([]float64, index-s.minIndex+1)
		copy(tmpBins, s.bins)
		s.bins = tmpBins
		s.maxIndex = index
	}
}

func (s *CollapsingLowestDenseStore) MergeWith(other Store) {
	if other.TotalCount() == 0 {
		return
	}
	o, ok := other.(*CollapsingLowestDenseStore)
	if !ok {
		for bin := range other.Bins() {
			s.AddBin(bin)
		}
		return
	}
	if s.count == 0 {
		s.copy(o)
		return
	}
	s.growRight(o.maxIndex)
	s.growLeft(o.minIndex)
	for i := maxInt(s.minIndex, o.minIndex); i <= minInt(s.maxIndex, o.maxIndex); i++ {
		s.bins[i-s.minIndex] += o.bins[i-o.minIndex]
	}
	var n float64
	for i := o.minIndex; i <= minInt(s.minIndex-1, o.maxIndex); i++ {
		n += o.bins[i-o.minIndex]
	}
	s.bins[0] += n
	s.count += o.count
	s.isCollapsedLo = s.isCollapsedLo || o.isCollapsedLo
}

func (s *CollapsingLowestDenseStore) Copy() Store {
	c := &CollapsingLowestDenseStore{}
	c.copy(s)
	return c
}

func (s *CollapsingLowestDenseStore) copy(o *CollapsingLowestDenseStore) {
	s.bins = make([]float64, len(o.bins))
	copy(s.bins, o.bins)
	s.minIndex = o.minIndex
	s.maxIndex = o.maxIndex
	s.count = o.count
	s.maxNumBins = o.maxNumBins
	s.isCollapsedLo = o.isCollapsedLo
}

func (s *CollapsingLowestDenseStore) ToRecord() Record {
	if s.IsEmpty() {
		return Record{Variant: CollapsingLowestDense, BinLimit: s.maxNumBins}
	}
	counts := make([]float64, len(s.bins))
	copy(counts, s.bins)
	return Record{
		Variant:       CollapsingLowestDense,
		BinLimit:      s.maxNumBins,
		Offset:        s.minIndex,
		Counts:        counts,
		IsCollapsedLo: s.isCollapsedLo,
	}
}

func maxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

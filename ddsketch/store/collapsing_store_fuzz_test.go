// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
)

// TestCollapsingStoreNeverExceedsBinLimit drives both collapsing dense
// variants with randomized index/count pairs and checks that after any
// sequence of adds, live bins never exceed binLimit + 1 (the sentinel
// collapsed bin).
func TestCollapsingStoreNeverExceedsBinLimit(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(200, 500)

	const binLimit = 32
	var indices []int32
	var counts []uint16
	f.Fuzz(&indices)
	f.Fuzz(&counts)
	n := len(indices)
	if len(counts) < n {
		n = len(counts)
	}

	lowest := NewCollapsingLowestDenseStore(binLimit)
	highest := NewCollapsingHighestDenseStore(binLimit)
	for i := 0; i < n; i++ {
		idx := int(indices[i] % 100000)
		count := float64(counts[i]%50) + 1
		lowest.AddWithCount(idx, count)
		highest.AddWithCount(idx, count)
	}

	assert.LessOrEqual(t, len(lowest.bins), binLimit)
	assert.LessOrEqual(t, len(highest.lowest.bins), binLimit)
}

// TestSparseAndDenseStoreAgree feeds the same randomized stream into an
// UnboundedSparseStore and a DenseStore, the two uncollapsed store shapes,
// and checks they agree on every externally observable property.
func TestSparseAndDenseStoreAgree(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(100, 300)

	var indices []int16
	f.Fuzz(&indices)

	sparse := NewUnboundedSparseStore()
	dense := NewDenseStore()
	for _, idx := range indices {
		sparse.Add(int(idx))
		dense.Add(int(idx))
	}

	assert.Equal(t, sparse.TotalCount(), dense.TotalCount())
	if sparse.IsEmpty() {
		return
	}
	sMin, _ := sparse.MinIndex()
	dMin, _ := dense.MinIndex()
	assert.Equal(t, sMin, dMin)
	sMax, _ := sparse.MaxIndex()
	dMax, _ := dense.MaxIndex()
	assert.Equal(t, sMax, dMax)
	assert.Equal(t, sparse.KeyAtRank(0), dense.KeyAtRank(0))
	assert.Equal(t, sparse.KeyAtRank(sparse.TotalCount()-1), dense.KeyAtRank(dense.TotalCount()-1))
}

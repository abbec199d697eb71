// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import (
	"errors"
)

// Bin holds the count of values mapped to a single bucket index. Counts are
// real-valued to support weighted samples.
type Bin struct {
	index int
	count float64
}

func NewBin(index int, count float64) (Bin, error) {
	if count < 0 {
		return Bin{}, errors.New("count cannot be negative")
	}
	return Bin{index: index, count: count}, nil
}

func (b Bin) Index() int {
	return b.index
}

func (b Bin) Count() float64 {
	return b.count
}

// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2018 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

// Package dataset is a sorted-array reference oracle used only by this
// module's own tests, to compute the true quantile/min/max/sum of a stream
// of samples so it can be compared against what a sketch reports for the
// same stream.
package dataset

import (
	"math"
	"sort"
)

// Dataset accumulates raw samples and lazily sorts them on first query.
type Dataset struct {
	Values []float64
	Count  int
	sum    float64
	sorted bool
}

func NewDataset() *Dataset { return &Dataset{} }

// Add records a sample with a weight of 1.
func (d *Dataset) Add(v float64) {
	d.AddWithCount(v, 1)
}

// AddWithCount records a sample repeated count times, to mirror a sketch
// fed with weighted values.
func (d *Dataset) AddWithCount(v float64, count int) {
	for i := 0; i < count; i++ {
		d.Values = append(d.Values, v)
	}
	d.Count += count
	d.sum += v * float64(count)
	d.sorted = false
}

// Quantile returns the lower quantile of the dataset, matching the rank
// convention a sketch's GetValueAtQuantile uses: rank = q * (count-1).
func (d *Dataset) Quantile(q float64) float64 {
	return d.LowerQuantile(q)
}

func (d *Dataset) LowerQuantile(q float64) float64 {
	if q < 0 || q > 1 || d.Count == 0 {
		return math.NaN()
	}
	d.sort()
	rank := q * float64(d.Count-1)
	return d.Values[int(math.Floor(rank))]
}

func (d *Dataset) UpperQuantile(q float64) float64 {
	if q < 0 || q > 1 || d.Count == 0 {
		return math.NaN()
	}
	d.sort()
	rank := q * float64(d.Count-1)
	return d.Values[int(math.Ceil(rank))]
}

func (d *Dataset) Min() float64 {
	d.sort()
	return d.Values[0]
}

func (d *Dataset) Max() float64 {
	d.sort()
	return d.Values[len(d.Values)-1]
}

func (d *Dataset) Sum() float64 {
	return d.sum
}

func (d *Dataset) Avg() float64 {
	return d.sum / float64(d.Count)
}

func (d *Dataset) Merge(o *Dataset) {
	for _, v := range o.Values {
		d.Add(v)
	}
}

func (d *Dataset) sort() {
	if d.sorted {
		return
	}
	sort.Float64s(d.Values)
	d.sorted = true
}

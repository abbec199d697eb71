// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import "errors"

// Sentinel errors covering invalid arguments, operating on an empty sketch,
// and attempting to merge sketches whose bucketing is incompatible. Callers
// can branch on these with errors.Is instead of matching error strings.
var (
	ErrInvalidQuantile   = errors.New("ddsketch: quantile must be between 0 and 1")
	ErrInvalidWeight     = errors.New("ddsketch: weight must be positive")
	ErrInvalidValue      = errors.New("ddsketch: value must be finite")
	ErrEmptySketch       = errors.New("ddsketch: no such element exists in an empty sketch")
	ErrIncompatibleMerge = errors.New("ddsketch: cannot merge sketches with incompatible index mappings")
)

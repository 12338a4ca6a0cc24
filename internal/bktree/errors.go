package bktree

import "errors"

// ErrInvalidMetric is returned when a tree is constructed without a usable
// metric or equality function.
var ErrInvalidMetric = errors.New("bktree: invalid metric")

package pipeline

import "errors"

// ErrAllSourcesFailed is returned by ProcessBatch when no source could be
// loaded.
var ErrAllSourcesFailed = errors.New("all sources failed")

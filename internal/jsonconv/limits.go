// Package jsonconv implements components C and D: an adaptive strategy
// selector over a single-pass streaming JSON→CValue token parser, with hard
// security limits on payload size, array element count, and nesting depth.
package jsonconv

import (
	"fmt"

	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

const (
	defaultMaxPayloadSize   = 100 * 1024 * 1024
	defaultMaxArrayElements = 1_000_000
	defaultMaxNestingDepth  = 50
)

// StreamingLimits bounds a single parse: payload size in bytes, total array
// element count across the whole document (including elements encountered
// while skipping unknown fields), and maximum
// object/array nesting depth.
type StreamingLimits struct {
	MaxPayloadSize   int
	MaxArrayElements int
	MaxNestingDepth  int
}

// DefaultStreamingLimits returns the spec's defaults: 100 MiB, 1,000,000
// elements, 50 levels.
func DefaultStreamingLimits() StreamingLimits {
	return StreamingLimits{
		MaxPayloadSize:   defaultMaxPayloadSize,
		MaxArrayElements: defaultMaxArrayElements,
		MaxNestingDepth:  defaultMaxNestingDepth,
	}
}

// NewStreamingLimits validates that every bound is strictly positive,
// failing fast with a domain error otherwise.
func NewStreamingLimits(maxPayloadSize, maxArrayElements, maxNestingDepth int) (StreamingLimits, error) {
	if maxPayloadSize <= 0 {
		return StreamingLimits{}, cerrors.NewConfigurationError(fmt.Sprintf("jsonconv: maxPayloadSize must be positive, got %d", maxPayloadSize))
	}
	if maxArrayElements <= 0 {
		return StreamingLimits{}, cerrors.NewConfigurationError(fmt.Sprintf("jsonconv: maxArrayElements must be positive, got %d", maxArrayElements))
	}
	if maxNestingDepth <= 0 {
		return StreamingLimits{}, cerrors.NewConfigurationError(fmt.Sprintf("jsonconv: maxNestingDepth must be positive, got %d", maxNestingDepth))
	}
	return StreamingLimits{MaxPayloadSize: maxPayloadSize, MaxArrayElements: maxArrayElements, MaxNestingDepth: maxNestingDepth}, nil
}

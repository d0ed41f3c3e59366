package jsonconv

import (
	"sync"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
)

// Strategy tags which conversion tier an AdaptiveConverter chose for a
// given payload.
type Strategy int

const (
	Eager Strategy = iota
	Lazy
	Streaming
)

func (s Strategy) String() string {
	switch s {
	case Eager:
		return "Eager"
	case Lazy:
		return "Lazy"
	case Streaming:
		return "Streaming"
	default:
		return "Unknown"
	}
}

const (
	defaultLazyThreshold      = 10_000
	defaultStreamingThreshold = 100_000
)

// AdaptiveConverter picks Eager/Lazy/Streaming by estimated payload size and
// dispatches to the single streaming parser underneath; all three tiers are
// semantically equivalent by construction (§8's "eager(j) = lazy(j) =
// streaming(j)" property holds trivially since there is only one parser),
// while lastStrategy still records which tier was selected for callers that
// observe it.
type AdaptiveConverter struct {
	lazyThreshold      int
	streamingThreshold int
	parser             *StreamingConverter

	mu           sync.Mutex
	lastStrategy Strategy
}

// NewAdaptiveConverter constructs a converter with the given thresholds and
// limits. lazyThreshold/streamingThreshold of 0 fall back to the spec's
// defaults (10,000 / 100,000).
func NewAdaptiveConverter(lazyThreshold, streamingThreshold int, limits StreamingLimits) *AdaptiveConverter {
	if lazyThreshold <= 0 {
		lazyThreshold = defaultLazyThreshold
	}
	if streamingThreshold <= 0 {
		streamingThreshold = defaultStreamingThreshold
	}
	return &AdaptiveConverter{
		lazyThreshold:      lazyThreshold,
		streamingThreshold: streamingThreshold,
		parser:             NewStreamingConverter(limits),
	}
}

// SelectStrategy buckets n against the converter's thresholds: n <=
// lazyThreshold is Eager, lazyThreshold < n <= streamingThreshold is Lazy,
// n > streamingThreshold is Streaming. The boundary itself stays with the
// lower strategy.
func (a *AdaptiveConverter) SelectStrategy(n int) Strategy {
	var s Strategy
	switch {
	case n <= a.lazyThreshold:
		s = Eager
	case n <= a.streamingThreshold:
		s = Lazy
	default:
		s = Streaming
	}
	a.mu.Lock()
	a.lastStrategy = s
	a.mu.Unlock()
	return s
}

// LastStrategy returns the most recently selected Strategy, for
// observability.
func (a *AdaptiveConverter) LastStrategy() Strategy {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastStrategy
}

// Convert selects a strategy from sizeHint (falling back to an estimate of
// data when sizeHint is nil) and converts data against target.
func (a *AdaptiveConverter) Convert(data []byte, target ctype.CType, sizeHint *int) (cvalue.CValue, error) {
	n := len(data)
	if sizeHint != nil {
		n = *sizeHint
	}
	a.SelectStrategy(n)
	return a.parser.Convert(data, target)
}

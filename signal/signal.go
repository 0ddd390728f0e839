// Package signal implements the cooperative stop signal (spec C9): a
// process-local flag with atomic set/read, observed only at on_update
// iteration boundaries.
package signal

import "sync/atomic"

// Stop is a cooperative cancellation flag. The zero value is unset. Safe
// for concurrent use: a caller may set it from any goroutine while the
// executor polls it between on_update calls.
type Stop struct {
	flag atomic.Bool
}

// New returns an unset Stop signal.
func New() *Stop {
	return &Stop{}
}

// Set raises the flag. Idempotent.
func (s *Stop) Set() {
	s.flag.Store(true)
}

// IsSet reports whether the flag has been raised.
func (s *Stop) IsSet() bool {
	return s.flag.Load()
}

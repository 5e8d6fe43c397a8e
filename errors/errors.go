// Package errors defines all exported error sentinels for the intsketch
// library.
//
// This is the single source of truth for error values, so errors.Is checks
// work for every caller regardless of which constructor surfaced the error.
package errors

import "errors"

// PerfectSet construction errors. Construction is the only operation that
// can fail at runtime; hash redraws below the caps are recovered silently.
var (
	// ErrRetryLimit reports that a construction retry cap was exhausted.
	// This signals a broken randomness source, not an unlucky draw: the
	// per-attempt failure probability is at most 1/2, so 64 consecutive
	// failures do not happen by chance.
	ErrRetryLimit = errors.New("intsketch: perfect set construction exceeded retry limit")

	// ErrDuplicateKey reports that the input to NewPerfectSet contained the
	// same key more than once. The set is built from distinct keys only.
	ErrDuplicateKey = errors.New("intsketch: duplicate key in perfect set input")
)

package recommend

import "errors"

// Error kinds surfaced by the recommendation backend. Callers classify
// with errors.Is; everything here aborts the generate call that saw it.
var (
	// ErrAuth means the backend rejected our credential. Fatal, never retried.
	ErrAuth = errors.New("recommendation backend rejected credentials")

	// ErrRateLimited means both the primary and fallback model were throttled.
	ErrRateLimited = errors.New("recommendation backend rate limited")

	// ErrMalformed means the model replied 2xx but the body failed schema validation.
	ErrMalformed = errors.New("malformed recommendation response")

	// ErrNetwork is any other transport or upstream failure.
	ErrNetwork = errors.New("recommendation backend unreachable")
)

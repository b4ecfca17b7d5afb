package models

import "errors"

// Failure kinds surfaced by the analysis core. Callers classify with
// errors.Is; handlers map each kind to an HTTP status and a detail string.
var (
	// ErrInvalidInput indicates a malformed request, e.g. an empty ticker.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates no cached row exists for the requested key.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamAnalysis indicates the analysis engine failed to produce a result.
	ErrUpstreamAnalysis = errors.New("analysis engine failure")

	// ErrPersistence indicates a store or log write/read failed.
	ErrPersistence = errors.New("persistence failure")

	// ErrRateLimited indicates an upstream data provider refused the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates a missing or invalid bearer credential.
	ErrUnauthorized = errors.New("unauthorized")
)

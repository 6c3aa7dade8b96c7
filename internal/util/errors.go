package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrUpstream indicates an external API returned a non-success status
	ErrUpstream = errors.New("upstream request failed")

	// ErrNotFound indicates a required record was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

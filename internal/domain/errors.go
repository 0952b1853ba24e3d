package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrServerOffline indicates the store API is unreachable
	ErrServerOffline = errors.New("store is unreachable")

	// ErrAuthFailed indicates the consumer key or secret was rejected
	ErrAuthFailed = errors.New("store credentials are invalid")

	// ErrInvalidPage indicates a page number or page size outside the valid range
	ErrInvalidPage = errors.New("invalid page parameters")

	// ErrFetchFailed is the uniform failure reported for a page that could not be synced
	ErrFetchFailed = errors.New("unable to refresh list")
)

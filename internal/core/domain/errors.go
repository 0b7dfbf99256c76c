package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSchemaInit indicates first-use schema creation failed.
	// The partially-created store file has been removed; the caller
	// must not proceed.
	ErrSchemaInit = errors.New("schema initialisation failed")

	// ErrMissingCredentials indicates the upstream API token or
	// secret could not be resolved from flags, files, environment
	// or the config file.
	ErrMissingCredentials = errors.New("missing API credentials")

	// ErrUpstreamUnavailable indicates the search API reported a
	// failure. Absence of results is valid and handled per keyword;
	// this error never aborts a whole run on its own.
	ErrUpstreamUnavailable = errors.New("search API unavailable")
)

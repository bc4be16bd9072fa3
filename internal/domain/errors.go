// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the caller supplied malformed or unacceptable input.
var ErrValidation = errors.New("validation failed")

// ErrUnauthorized indicates the caller presented no valid session.
var ErrUnauthorized = errors.New("unauthorized")

// ErrMisconfigured indicates a deployment problem the caller cannot fix,
// such as a backend without a write credential.
var ErrMisconfigured = errors.New("misconfigured")

// ErrUpstreamWrite indicates the persistence backend rejected a write or
// could not be reached.
var ErrUpstreamWrite = errors.New("upstream write failed")

package model

import "errors"

var (
	// ErrNotFound is returned when a requested record exists neither locally nor upstream.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable is returned when an upstream cannot be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamError is returned when an upstream answers with a failure.
	ErrUpstreamError = errors.New("upstream error")
	// ErrPriceUnavailable is returned when no price exists for a required second.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrInvalidArgument is returned for malformed caller input.
	ErrInvalidArgument = errors.New("invalid argument")
)

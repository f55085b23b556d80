package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCorruptData     = errors.New("stored data is corrupt")
	ErrLocked          = errors.New("resource is locked by another writer")

	// Chat advisories. They never terminate the session.
	ErrBusy          = errors.New("a response is already in progress")
	ErrRateLimited   = errors.New("rate limited by remote endpoint")
	ErrRemoteFailure = errors.New("remote endpoint returned an error")
	ErrTransport     = errors.New("network or protocol failure")
)

package model

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSessionExpired is returned when a pending media session is gone,
	// either never created or superseded by a newer extraction.
	ErrSessionExpired = errors.New("media session expired")
	// ErrExtractionFailed is returned when the extraction collaborator
	// cannot resolve a link into media assets.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrDuplicatePayment is returned when a payment confirmation with an
	// already-seen charge id is redelivered.
	ErrDuplicatePayment = errors.New("payment already processed")
	// ErrFormatUnavailable is returned when a format is requested that the
	// extracted media does not carry.
	ErrFormatUnavailable = errors.New("format not available")
)

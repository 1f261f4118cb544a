package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrQuotaExceeded    = errors.New("free message quota exceeded")
	ErrNoActiveSession  = errors.New("no active session for identity")
	ErrEmptyCompletion  = errors.New("empty completion payload")
	ErrMalformedResult  = errors.New("malformed completion result")
	ErrCorruptedBundle  = errors.New("corrupted session bundle")
	ErrUnsupportedLang  = errors.New("unsupported language")
)

package domain

import "errors"

// Relay error taxonomy. None of these are fatal; each is handled per request.
var (
	// ErrInvalidIdentity is returned for a join by an unknown or unverified
	// user. The connection stays unjoined.
	ErrInvalidIdentity = errors.New("unknown or unverified user")
	// ErrNotConnected is returned for a send between users who are not
	// eligible to message each other. Nothing is stored or delivered.
	ErrNotConnected = errors.New("users are not connected")
	// ErrEmptyMessage is returned for a send whose text is empty after
	// trimming. Nothing is stored or delivered.
	ErrEmptyMessage = errors.New("message text is empty")
)

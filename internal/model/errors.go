package model

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is not registered.
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateSession is returned when registering an id that is
	// already present.
	ErrDuplicateSession = errors.New("session id already registered")

	// ErrRecordNotFound is returned when a history record does not exist.
	ErrRecordNotFound = errors.New("session record not found")
)

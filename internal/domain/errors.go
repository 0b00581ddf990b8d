package domain

import "errors"

var (
	// ErrUnauthorized is returned when a client cannot prove the identity it claims.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotConnected is returned when an outbound message has no live recipient.
	ErrNotConnected = errors.New("recipient not connected")
	// ErrUnknownMediaKey is returned for keys outside MediaKeys.
	ErrUnknownMediaKey = errors.New("unknown media key")
	// ErrInvalidSelection is returned when selection data cannot be decoded.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrPrimaryReviewer is returned when removing the first registered reviewer.
	ErrPrimaryReviewer = errors.New("primary reviewer cannot be removed")
	ErrReviewerExists   = errors.New("reviewer already registered")
	ErrReviewerNotFound = errors.New("reviewer not found")
	ErrInvalidUserID    = errors.New("invalid user id")
)

package errors

import "errors"

var (
	// ErrNegativeCapacity is returned when a cache is constructed with a
	// capacity below zero.
	ErrNegativeCapacity = errors.New("negative capacity")
	ErrTimeout          = errors.New("timeout")
	ErrConnectionClosed = errors.New("connection closed")
)

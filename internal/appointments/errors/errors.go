package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrSlotTaken = errors.New("time slot already has a scheduled appointment")
)

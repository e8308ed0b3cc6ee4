package entity

import "errors"

var (
	// Argument errors: malformed names, empty candidate lists, min > max.
	ErrInvalidArgument = errors.New("invalid argument")

	// No candidate passed the health availability filter.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// Font or codec failure while rendering a plan.
	ErrRenderFailure = errors.New("render failure")

	// Repository errors
	ErrSampleNotFound = errors.New("sample not found")
)

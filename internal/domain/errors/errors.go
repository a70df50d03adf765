package errors

import "errors"

var (
	ErrTripNotFound      = errors.New("trip request not found")
	ErrStatusConflict    = errors.New("trip status conflict")
	ErrInvalidState      = errors.New("operation not allowed in current trip state")
	ErrLocationNotFound  = errors.New("location not found")
	ErrQuotesUnavailable = errors.New("no quotes available")
	ErrInvalidDateRange  = errors.New("invalid date range")
)

package service

import "errors"

var (
	ErrNotAvailable       = errors.New("requested time slot is not available")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("too many attempts, try again later")
	ErrAlreadyCheckedOut  = errors.New("already checked out today")
)

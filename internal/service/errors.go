package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")

	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("access denied")
	ErrConflict   = errors.New("resource already exists")
	ErrValidation = errors.New("invalid request")
	ErrUpstream   = errors.New("upstream provider failure")
)

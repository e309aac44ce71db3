package models

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidArgument  = errors.New("invalid arguments")
	ErrInvalidExtension = errors.New("file extension not allowed")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrIdentityMismatch = errors.New("token identity mismatch")
)

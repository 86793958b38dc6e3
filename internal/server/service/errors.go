package service

import "errors"

// Sentinel errors for the service layer.
var (
	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNoFile          = errors.New("no file uploaded")
)

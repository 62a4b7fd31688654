package model

import "errors"

var (
	// ErrNotFound covers both a missing record and one owned by another user.
	ErrNotFound = errors.New("not found")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

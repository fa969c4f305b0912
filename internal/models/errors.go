package models

import "errors"

// Forum errors shared by the in-memory forum and its HTTP handlers
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrBanned             = errors.New("User is banned")
	ErrInvalidParent      = errors.New("parent comment belongs to another post")
)

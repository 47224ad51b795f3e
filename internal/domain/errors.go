package domain

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidToken  = errors.New("invalid authentication credentials")
)

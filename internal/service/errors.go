package service

import "errors"

var (
	// ErrValidation marks user-correctable input errors. It is wrapped with a
	// detail message, match it with errors.Is.
	ErrValidation = errors.New("validation error")

	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
)

package service

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no usable session
	ErrUnauthenticated = errors.New("invalid session during request")

	// ErrProfileCreation is returned when the feature service did not create a profile
	ErrProfileCreation = errors.New("failed to create profile")
)

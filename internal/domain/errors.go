package domain

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrGeneration = errors.New("generation failed")
	ErrDelivery   = errors.New("delivery failed")
	ErrValidation = errors.New("validation failed")
)

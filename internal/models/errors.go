package models

import "errors"

// Custom errors
var (
	ErrInvalidQuote = errors.New("invalid market quote")
	ErrUnknownSport = errors.New("unknown sport")
	ErrNotFound     = errors.New("record not found")
	ErrNoSnapshot   = errors.New("no stored snapshot")
	ErrInvalidID    = errors.New("invalid ID format")
)

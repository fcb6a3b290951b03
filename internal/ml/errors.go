// Package ml provides the trained probability source.
package ml

import "errors"

var (
	// ErrMLServiceUnavailable indicates the ML service is unreachable
	ErrMLServiceUnavailable = errors.New("ml service unavailable")

	// ErrInvalidPrediction indicates the prediction response is invalid
	ErrInvalidPrediction = errors.New("invalid prediction response")

	// ErrConnectionFailed indicates gRPC connection failed
	ErrConnectionFailed = errors.New("grpc connection failed")

	// ErrTimeout indicates request timed out
	ErrTimeout = errors.New("request timeout")
)

package domain

import (
	"context"
	"errors"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested game or page does not exist
	ErrNotFound = errors.New("not found")

	// ErrServerOffline indicates the catalog service is unreachable
	ErrServerOffline = errors.New("catalog service is unreachable")

	// ErrAuthFailed indicates the API key was rejected
	ErrAuthFailed = errors.New("API key is invalid")

	// ErrRateLimited indicates the catalog service throttled the request
	ErrRateLimited = errors.New("too many requests")

	// ErrMissingAPIKey indicates no API key was configured
	ErrMissingAPIKey = errors.New("API key is not configured")
)

// UserMessage converts an error into text suitable for an error banner.
// Falls back to fallback when err carries no useful message.
func UserMessage(err error, fallback string) string {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.Is(err, ErrServerOffline):
		return "No connection. Check your network and try again."
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please wait a moment."
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

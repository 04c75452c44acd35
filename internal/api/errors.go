package api

import (
	"errors"
	"fmt"
)

const defaultErrorMessage = "API request failed"

var (
	// ErrUnauthorized means the session could not be recovered by a token
	// refresh. The stored session has been purged when this is returned.
	ErrUnauthorized = errors.New("session expired, please log in again")

	// ErrNoToken is returned by calls that need an access token when none
	// is stored.
	ErrNoToken = errors.New("not logged in")
)

// Error is a backend failure reported through the response envelope or a
// non-2xx status.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// UploadError is a failed PUT to a presigned storage URL.
type UploadError struct {
	Status int
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("image upload failed: HTTP %d", e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var upErr *UploadError
	if errors.As(err, &upErr) {
		return upErr.Status
	}
	return 0
}

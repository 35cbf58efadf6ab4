package platform

import (
	"errors"
	"strconv"
)

var (
	// ErrCancelUnsupported is returned by drivers that don't support
	// best-effort cancellation.
	ErrCancelUnsupported = errors.New("platform: cancel not supported by this driver")

	// ErrNotImplemented is returned by Facebook/X's publish until those
	// integrations exist (spec §4.5: "must still implement validate with
	// sensible rules ... and return a well-formed not-implemented error
	// from publish").
	ErrNotImplemented = errors.New("platform: publish not implemented for this driver")

	ErrUnknownPlatform = errors.New("platform: unknown platform tag")
)

// APIError wraps a non-2xx platform response, preserving the upstream
// status/code/message in its Error() text, which the dispatcher records
// as the publication's error message.
type APIError struct {
	Platform   string
	HTTPStatus int
	Code       string
	Message    string
	TraceID    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return e.Platform + ": " + e.Code + ": " + e.Message
	}
	return e.Platform + ": http " + strconv.Itoa(e.HTTPStatus) + ": " + e.Message
}

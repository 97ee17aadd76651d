package statsapi

import (
	"errors"
	"fmt"
)

// ErrInvalidPage is returned when a page below 1 is requested.
var ErrInvalidPage = errors.New("page must be >= 1")

// ErrInvalidLimit is returned when the page size is not one of PageSizes.
var ErrInvalidLimit = errors.New("limit must be one of 5, 10, 20, 50")

// NetworkError means the stats service could not be reached at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("stats request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage is the text shown in the error view.
func (e *NetworkError) UserMessage() string {
	return "Failed to connect to server"
}

// HTTPError means the stats service answered with a non-2xx status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("stats request returned status %d", e.StatusCode)
}

// UserMessage is the text shown in the error view.
func (e *HTTPError) UserMessage() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// ParseError means the body was not valid JSON or did not have the
// expected shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode stats payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UserMessage is the text shown in the error view.
func (e *ParseError) UserMessage() string {
	return "Received malformed statistics data"
}

// UserMessage converts any fetch error into the text shown to the visitor.
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	if errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrInvalidLimit) {
		return err.Error()
	}
	return "Failed to load statistics"
}

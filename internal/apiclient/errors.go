package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned before dispatch when no session principal is available.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrRequestFailed matches every non-2xx backend response.
	ErrRequestFailed = errors.New("request failed")
	// ErrNetwork matches transport-level failures.
	ErrNetwork = errors.New("network error")
	// ErrInvalidServerResponse matches 2xx responses whose body could not be used.
	ErrInvalidServerResponse = errors.New("invalid server response")
)

// RequestFailedError carries the status and message of a non-2xx backend response.
type RequestFailedError struct {
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string { return e.Message }

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// NetworkError wraps a failure to reach the backend or read its response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// InvalidResponseError wraps a decode failure of an otherwise successful response.
type InvalidResponseError struct {
	Err error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid server response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

func (e *InvalidResponseError) Is(target error) bool { return target == ErrInvalidServerResponse }

// StatusCode returns the backend status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.StatusCode, true
	}
	return 0, false
}

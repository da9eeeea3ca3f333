package transcript

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the trimmed input is empty. No request is made.
	ErrEmptyInput = errors.New("transcript input is empty")
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("a submission is already in progress")
)

// fallbackMessage is shown when a transport failure carries no message.
const fallbackMessage = "An unexpected error occurred"

// TransportError describes a failed call to the processing endpoint, either a
// non-2xx status (StatusCode set) or a transport failure (Err set).
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func statusError(code int) *TransportError {
	return &TransportError{
		StatusCode: code,
		Message:    fmt.Sprintf("API request failed with status %d", code),
	}
}

func transportError(err error) *TransportError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = fallbackMessage
	}
	return &TransportError{Message: msg, Err: err}
}

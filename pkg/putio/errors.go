package putio

import (
	"errors"
	"fmt"
)

// ErrUnboundFile is returned by per-file operations on a File that was not
// decoded by a Client.
var ErrUnboundFile = errors.New("putio: file is not bound to a client")

// APIError is a response the success rule rejected.
type APIError struct {
	StatusCode int
	Status     string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("put.io error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	if e.Status != "" {
		return fmt.Sprintf("put.io error %d: status %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("put.io error %d", e.StatusCode)
}

func newAPIError(resp *Response) *APIError {
	body := resp.Object()
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     stringField(body, "status", ""),
		Type:       stringField(body, "error_type", ""),
		Message:    stringField(body, "error_message", ""),
	}
}

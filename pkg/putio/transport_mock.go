package putio

import (
	"context"
	"net/http"
	"sync"
)

// RecordedRequest is a request seen by a MockTransport.
type RecordedRequest struct {
	Token string
	Request
}

// MockTransport answers every request with a pre-programmed status and body
// without doing any I/O. It is safe for concurrent use.
type MockTransport struct {
	mu         sync.Mutex
	statusCode int
	body       any
	err        error
	requests   []RecordedRequest
}

var _ Transport = (*MockTransport)(nil)

// NewMockTransport returns a mock that answers 200 with an empty body.
func NewMockTransport() *MockTransport {
	return &MockTransport{statusCode: http.StatusOK}
}

// SetResponse programs the next responses.
func (m *MockTransport) SetResponse(statusCode int, body any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = statusCode
	m.body = body
	m.err = nil
}

// SetStatusCode changes only the status code.
func (m *MockTransport) SetStatusCode(statusCode int) {
	m.mu.Lock()
	m.statusCode = statusCode
	m.mu.Unlock()
}

// SetBody changes only the body.
func (m *MockTransport) SetBody(body any) {
	m.mu.Lock()
	m.body = body
	m.mu.Unlock()
}

// SetError makes Perform fail as if the network were down.
func (m *MockTransport) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Requests returns a copy of every recorded request.
func (m *MockTransport) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request.
func (m *MockTransport) LastRequest() (RecordedRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return RecordedRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// Reset clears recorded requests and restores the default response.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = http.StatusOK
	m.body = nil
	m.err = nil
	m.requests = nil
}

// Perform records req and returns the programmed response.
func (m *MockTransport) Perform(ctx context.Context, token string, req *Request) (*Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{Token: token, Request: *req})
	statusCode, body, err := m.statusCode, m.body, m.err
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: statusCode, Body: normalize(body)}, nil
}

// normalize pushes body through the JSON codec so decoders see the same shapes
// the live transport produces.
func normalize(body any) any {
	if body == nil {
		return nil
	}
	raw, err := codec.Marshal(body)
	if err != nil {
		return body
	}
	return decodeBody(raw)
}

package putio

import (
	"bytes"
	"context"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Upload is an optional file body streamed as multipart content.
type Upload struct {
	FieldName string
	FileName  string
	Reader    io.Reader
}

// Request is a single API call. Params become the query string for GET and
// DELETE and the form body otherwise.
type Request struct {
	Method string
	URL    string
	Params Params
	File   *Upload
}

// Response carries the status code and the decoded JSON body. Body is nil when
// the server sent nothing or something that is not JSON.
type Response struct {
	StatusCode int
	Body       any
}

// Transport performs requests. Implementations must be safe for concurrent use.
type Transport interface {
	Perform(ctx context.Context, token string, req *Request) (*Response, error)
}

// Successful reports whether code is in the 2xx range.
func Successful(code int) bool {
	return code >= 200 && code <= 299
}

// OK reports whether the response counts as a success: a 2xx status and no
// envelope declaring failure.
func (r *Response) OK() bool {
	if r == nil || !Successful(r.StatusCode) {
		return false
	}
	return !failedEnvelope(r.Body)
}

// Object returns the body as a JSON object, or an empty map.
func (r *Response) Object() map[string]any {
	if r == nil {
		return map[string]any{}
	}
	if m, ok := asObject(r.Body); ok {
		return m
	}
	return map[string]any{}
}

func failedEnvelope(body any) bool {
	m, ok := asObject(body)
	if !ok {
		return false
	}
	status, ok := m["status"].(string)
	if !ok {
		return false
	}
	switch strings.ToUpper(status) {
	case "FAIL", "ERROR":
		return true
	}
	return false
}

// decodeBody parses raw as JSON, yielding nil for empty or malformed input.
func decodeBody(raw []byte) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := codec.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

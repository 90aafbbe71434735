package putio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "goputiokit"
)

// LiveConfig configures a LiveTransport. Zero values pick sensible defaults.
type LiveConfig struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// LiveTransport talks to the real API over HTTP.
type LiveTransport struct {
	client *resty.Client
	logger *logrus.Logger
}

var _ Transport = (*LiveTransport)(nil)

// NewLiveTransport creates a LiveTransport. Failed requests are never retried.
func NewLiveTransport(cfg LiveConfig) *LiveTransport {
	var client *resty.Client
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	} else {
		client = resty.New()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	client.SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetLogger(logger)

	return &LiveTransport{client: client, logger: logger}
}

// Perform sends req and decodes the response body. Only transport-level
// failures are returned as errors; HTTP error statuses are not.
func (t *LiveTransport) Perform(ctx context.Context, token string, req *Request) (*Response, error) {
	requestID := uuid.NewString()

	r := t.client.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", requestID)
	if token != "" {
		r.SetAuthToken(token)
	}

	switch req.Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if len(req.Params) > 0 {
			r.SetQueryParamsFromValues(req.Params.Values())
		}
	default:
		if len(req.Params) > 0 {
			r.SetFormDataFromValues(req.Params.Values())
		}
		if req.File != nil {
			field := req.File.FieldName
			if field == "" {
				field = "file"
			}
			r.SetFileReader(field, req.File.FileName, req.File.Reader)
		}
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"method":     req.Method,
			"url":        req.URL,
			"request_id": requestID,
		}).Warnf("put.io request failed: %v", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	t.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"url":        req.URL,
		"status":     resp.StatusCode(),
		"request_id": requestID,
	}).Debug("put.io request completed")

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       decodeBody(resp.Body()),
	}, nil
}

package putio

import (
	"context"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Client issues put.io API operations through a Session. Every operation
// returns immediately with a channel that receives exactly one value.
type Client struct {
	session *Session
	logger  *logrus.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client bound to session. A nil session gets a fresh one.
func NewClient(session *Session, opts ...ClientOption) *Client {
	if session == nil {
		session = NewSession()
	}
	c := &Client{session: session}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetOutput(io.Discard)
	}
	return c
}

// Session returns the client's session.
func (c *Client) Session() *Session {
	return c.session
}

// DecodeFile decodes m into a File bound to this client.
func (c *Client) DecodeFile(m map[string]any) *File {
	return DecodeFile(m, c)
}

type call struct {
	method string
	path   string
	params Params
	upload *Upload
}

// do performs a call and applies the success rule. A non-nil error is either
// a transport failure or an *APIError.
func (c *Client) do(ctx context.Context, cl call) (*Response, error) {
	token, _ := c.session.Token()
	router := c.session.Router()

	req := &Request{
		Method: cl.method,
		URL:    router.Resolve(cl.path, nil),
		Params: cl.params,
		File:   cl.upload,
	}
	if cl.upload != nil {
		req.URL = router.ResolveUpload(cl.path, nil)
	}

	resp, err := c.session.Transport().Perform(ctx, token, req)
	if err != nil {
		c.logger.Warnf("%s %s: %v", cl.method, cl.path, err)
		return nil, err
	}
	if !resp.OK() {
		apiErr := newAPIError(resp)
		c.logger.WithFields(logrus.Fields{
			"method": cl.method,
			"path":   cl.path,
			"status": resp.StatusCode,
		}).Warnf("put.io rejected request: %v", apiErr)
		return resp, apiErr
	}
	return resp, nil
}

// fetch performs a read call and returns the response body as an object.
func (c *Client) fetch(ctx context.Context, cl call) (map[string]any, error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	return resp.Object(), nil
}

// exec performs a mutating call and reports only whether it succeeded.
func (c *Client) exec(ctx context.Context, cl call) bool {
	_, err := c.do(ctx, cl)
	return err == nil
}

func idParams(key string, ids []int64) Params {
	params := make(Params, 0, len(ids))
	for _, id := range ids {
		params = params.Add(key, strconv.FormatInt(id, 10))
	}
	return params
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

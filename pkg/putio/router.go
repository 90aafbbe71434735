package putio

import (
	"net/url"
	"strings"
)

const (
	// BaseURL is the origin every API path is resolved against.
	BaseURL = "https://api.put.io/v2"
	// UploadURL is the origin used for file uploads.
	UploadURL = "https://upload.put.io/v2"
)

// Param is a single query or form parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of parameters. Keys may repeat.
type Params []Param

// Add returns p with key=value appended.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode returns the URL-encoded form of p, preserving order.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(param.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(param.Value))
	}
	return sb.String()
}

// Values converts p into url.Values. Order between different keys is lost.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for _, param := range p {
		values.Add(param.Key, param.Value)
	}
	return values
}

// Router builds absolute URLs for API paths.
type Router struct {
	Base       string
	UploadBase string
}

// DefaultRouter points at the public put.io API.
var DefaultRouter = Router{Base: BaseURL, UploadBase: UploadURL}

// Resolve joins the base address, path and query. It never touches the network
// and does not require a token.
func (r Router) Resolve(path string, query Params) string {
	return join(r.base(), path, query)
}

// ResolveUpload is Resolve against the upload origin.
func (r Router) ResolveUpload(path string, query Params) string {
	return join(r.uploadBase(), path, query)
}

func (r Router) base() string {
	if r.Base == "" {
		return BaseURL
	}
	return strings.TrimRight(r.Base, "/")
}

func (r Router) uploadBase() string {
	if r.UploadBase == "" {
		return UploadURL
	}
	return strings.TrimRight(r.UploadBase, "/")
}

func join(base, path string, query Params) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := base + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

package ports

import (
	"context"
	"encoding/json"
	"net/http"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// RequestOption adjusts a single gateway call.
type RequestOption func(*RequestOptions)

// RequestOptions is the resolved set of per-call options.
type RequestOptions struct {
	SkipAuth bool
	Bearer   string
	Header   http.Header
}

// SkipAuth marks a public endpoint: no session credential is attached and a
// 401 never triggers renewal or logout.
func SkipAuth() RequestOption {
	return func(o *RequestOptions) { o.SkipAuth = true }
}

// WithBearer attaches an explicit credential. Used with SkipAuth for calls
// such as logout and refresh that present a credential but must not recurse
// into the renewal path.
func WithBearer(token string) RequestOption {
	return func(o *RequestOptions) { o.Bearer = token }
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Header == nil {
			o.Header = http.Header{}
		}
		o.Header.Set(key, value)
	}
}

// Requester issues calls against the hub API. body is JSON-encoded when non-nil.
type Requester interface {
	Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error)
}

package http

import (
	"strings"
	"time"
)

// Request is a fully resolved request, ready to dispatch. Placeholders have
// already been interpolated; nothing below this layer knows about templates.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	// Timeout bounds the whole exchange. Zero means unset; the dispatcher
	// substitutes the default. Negative is rejected before dispatch.
	Timeout time.Duration
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// HasHeader reports whether a header is present, matching case-insensitively.
func (r *Request) HasHeader(key string) bool {
	for k := range r.Headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// Clone returns a copy with its own header map, so callers can adjust
// headers without mutating the original.
func (r *Request) Clone() *Request {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	out := *r
	out.Headers = headers
	return &out
}

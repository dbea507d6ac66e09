// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wire

import (
	"fmt"
	"io"
	"strings"
)

// Response is a structured HTTP/1.1 response. Construct it with
// [NewResponse] so the status code is validated against the known
// status table.
type Response struct {
	StatusCode int
	Headers    Headers
	Body       Body
}

// ResponseOption configures a [Response] at construction time.
type ResponseOption func(*Response)

// WithHeader adds a response header.
func WithHeader(name string, value any) ResponseOption {
	return func(r *Response) {
		r.Headers.Add(name, value)
	}
}

// WithCookie adds a cookie to be emitted as a Set-Cookie line.
func WithCookie(c Cookie) ResponseOption {
	return func(r *Response) {
		r.Headers.AddCookie(c)
	}
}

// WithBody sets the response body.
func WithBody(b Body) ResponseOption {
	return func(r *Response) {
		r.Body = b
	}
}

// NewResponse initializes a Response, failing with
// [UnknownStatusCodeError] if the status code is not in the known table.
func NewResponse(statusCode int, opts ...ResponseOption) (*Response, error) {
	_, ok := StatusText(statusCode)
	if !ok {
		return nil, UnknownStatusCodeError{Code: statusCode}
	}

	resp := &Response{
		StatusCode: statusCode,
	}
	for _, opt := range opts {
		opt(resp)
	}
	return resp, nil
}

// AddCookie attaches a cookie to the response.
func (r *Response) AddCookie(c Cookie) {
	r.Headers.AddCookie(c)
}

// SetHeader sets a response header.
func (r *Response) SetHeader(name string, value any) {
	r.Headers.Add(name, value)
}

// String renders the full response: status line, headers, Set-Cookie
// lines, a blank line and the body.
func (r *Response) String() string {
	reason, _ := StatusText(r.StatusCode)

	var sb strings.Builder
	fmt.Fprintf(&sb, "HTTP/1.1 %d %s\r\n", r.StatusCode, reason)
	r.Headers.write(&sb)
	sb.WriteString("\r\n")
	sb.WriteString(r.Body.String())
	return sb.String()
}

// WriteTo implements the [io.WriterTo] interface.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}

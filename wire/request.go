// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MalformedRequestError occurs when the raw byte stream cannot be
// parsed into a request: a bad request line, a header line without a
// ":" separator, a malformed Cookie header or a body shorter than its
// declared Content-Length.
type MalformedRequestError struct {
	Reason string
	Cause  error
}

// Error implements the [error] interface.
func (e MalformedRequestError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("malformed request: %s", e.Reason)
	}
	return fmt.Sprintf("malformed request: %s: %s", e.Reason, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e MalformedRequestError) Unwrap() error {
	return e.Cause
}

// Request is a parsed HTTP/1.1 request. It is built once per
// connection and treated as immutable once handed to the binder,
// except for the declared-parameter conversions the binder applies
// in place.
type Request struct {
	Method string

	// Path is the request target without its query string.
	Path string

	// Route is Path with the trailing path-parameter segments
	// stripped. It is filled in after route resolution.
	Route string

	Proto string

	PathParams PathParams
	Query      QueryParams
	Headers    Headers

	// Body holds the JSON decoded value when the request declared an
	// application/json content type.
	Body Body

	ContentLength int
	ContentType   string

	rawBody []byte
}

// RawBody returns the undecoded body bytes.
func (r *Request) RawBody() []byte {
	return r.rawBody
}

// Cookies returns the cookies parsed from the request's Cookie header.
func (r *Request) Cookies() *Cookies {
	return r.Headers.Cookies()
}

// ReadRequest parses one HTTP/1.1 request from the given reader.
//
// Query string values are split on "&" and the first "=" of each pair;
// they are not URL decoded. A Cookie header is parsed into cookie
// entries instead of being stored as a plain header. The body is read
// iff Content-Length > 0 and JSON decoded iff the Content-Type
// contains "application/json".
func ReadRequest(br *bufio.Reader) (*Request, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, MalformedRequestError{Reason: "failed to read request line", Cause: err}
	}

	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, MalformedRequestError{Reason: fmt.Sprintf("invalid request line: %q", line)}
	}

	req := &Request{
		Method: parts[0],
		Proto:  parts[2],
	}

	target := parts[1]
	req.Path = target
	if path, rawQuery, ok := strings.Cut(target, "?"); ok {
		req.Path = path
		err = parseQuery(&req.Query, rawQuery)
		if err != nil {
			return nil, err
		}
	}

	err = readHeaders(br, req)
	if err != nil {
		return nil, err
	}

	err = readBody(br, req)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseQuery(query *QueryParams, rawQuery string) error {
	for _, pair := range strings.Split(rawQuery, "&") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return MalformedRequestError{Reason: fmt.Sprintf("invalid query pair: %q", pair)}
		}
		query.Add(name, value, false)
	}
	return nil
}

func readHeaders(br *bufio.Reader, req *Request) error {
	for {
		line, err := readLine(br)
		if err != nil {
			return MalformedRequestError{Reason: "failed to read header line", Cause: err}
		}
		if line == "" {
			return nil
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return MalformedRequestError{Reason: fmt.Sprintf("invalid header line: %q", line)}
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		switch strings.ToLower(name) {
		case "content-length":
			n, err := strconv.Atoi(value)
			if err != nil {
				return MalformedRequestError{Reason: "invalid content length", Cause: err}
			}
			req.ContentLength = n
			req.Headers.Add(name, value)
		case "content-type":
			req.ContentType = strings.ToLower(value)
			req.Headers.Add(name, value)
		case "cookie":
			cookies, err := ParseCookies(value)
			if err != nil {
				return MalformedRequestError{Reason: "invalid cookie header", Cause: err}
			}
			req.Headers.SetCookies(cookies)
		default:
			req.Headers.Add(name, value)
		}
	}
}

func readBody(br *bufio.Reader, req *Request) error {
	if req.ContentLength <= 0 {
		return nil
	}

	req.rawBody = make([]byte, req.ContentLength)
	_, err := io.ReadFull(br, req.rawBody)
	if err != nil {
		return MalformedRequestError{Reason: "body shorter than declared content length", Cause: err}
	}

	if !strings.Contains(req.ContentType, "application/json") {
		return nil
	}

	var v any
	err = json.Unmarshal(req.rawBody, &v)
	if err != nil {
		return MalformedRequestError{Reason: "invalid json body", Cause: err}
	}
	req.Body = NewBody(v)
	return nil
}

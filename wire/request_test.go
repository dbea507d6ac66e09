// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wire

import (
	"bufio"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func readRequestString(s string) (*Request, error) {
	return ReadRequest(bufio.NewReader(strings.NewReader(s)))
}

func TestReadRequest(t *testing.T) {
	t.Run("will parse the request", func(t *testing.T) {
		t.Run("if the request has a query string, headers and cookies", func(t *testing.T) {
			raw := "GET /item/42?limit=10&verbose=true HTTP/1.1\r\n" +
				"Host: localhost\r\n" +
				"Authorization: Bearer abc\r\n" +
				"Cookie: session=s1; theme=dark\r\n" +
				"\r\n"

			req, err := readRequestString(raw)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "GET", req.Method) {
				return
			}
			if !assert.Equal(t, "/item/42", req.Path) {
				return
			}
			if !assert.Equal(t, "HTTP/1.1", req.Proto) {
				return
			}

			limit, ok := req.Query.Get("limit")
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, "10", limit.Value) {
				return
			}
			if !assert.False(t, limit.Declared) {
				return
			}
			if !assert.Equal(t, []string{"limit", "verbose"}, req.Query.Names()) {
				return
			}

			auth, ok := req.Headers.Get("authorization")
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, "Bearer abc", auth) {
				return
			}

			session, ok := req.Cookies().Get("session")
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, "s1", session.Value) {
				return
			}
			if !assert.Equal(t, 2, req.Cookies().Len()) {
				return
			}

			// the Cookie header is replaced by its parsed entries
			_, ok = req.Headers.Get("cookie")
			if !assert.False(t, ok) {
				return
			}
		})

		t.Run("if the request has a json body", func(t *testing.T) {
			body := `{"name": "bolt", "price": 3}`
			raw := "POST /item HTTP/1.1\r\n" +
				"Content-Type: application/json\r\n" +
				"Content-Length: " + strconv.Itoa(len(body)) + "\r\n" +
				"\r\n" +
				body

			req, err := readRequestString(raw)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, len(body), req.ContentLength) {
				return
			}
			if !assert.Equal(t, "application/json", req.ContentType) {
				return
			}
			if !assert.Equal(t, body, string(req.RawBody())) {
				return
			}

			m, ok := req.Body.Value().(map[string]any)
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, "bolt", m["name"]) {
				return
			}
		})

		t.Run("if the request body is not json", func(t *testing.T) {
			body := "hello"
			raw := "POST /item HTTP/1.1\r\n" +
				"Content-Type: text/plain\r\n" +
				"Content-Length: " + strconv.Itoa(len(body)) + "\r\n" +
				"\r\n" +
				body

			req, err := readRequestString(raw)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, body, string(req.RawBody())) {
				return
			}
			if !assert.True(t, req.Body.IsZero()) {
				return
			}
		})

		t.Run("without url decoding the query string", func(t *testing.T) {
			req, err := readRequestString("GET /search?q=a%20b HTTP/1.1\r\n\r\n")
			if !assert.Nil(t, err) {
				return
			}

			q, ok := req.Query.Get("q")
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, "a%20b", q.Value) {
				return
			}
		})
	})

	t.Run("will return a MalformedRequestError", func(t *testing.T) {
		t.Run("if the request line does not have three parts", func(t *testing.T) {
			_, err := readRequestString("GET /item\r\n\r\n")

			var merr MalformedRequestError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
			if !assert.NotEmpty(t, merr.Error()) {
				return
			}
		})

		t.Run("if a query pair has no equals sign", func(t *testing.T) {
			_, err := readRequestString("GET /item?limit HTTP/1.1\r\n\r\n")

			var merr MalformedRequestError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
		})

		t.Run("if a header line has no colon", func(t *testing.T) {
			_, err := readRequestString("GET /item HTTP/1.1\r\nHost localhost\r\n\r\n")

			var merr MalformedRequestError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
		})

		t.Run("if the content length is not a number", func(t *testing.T) {
			_, err := readRequestString("GET /item HTTP/1.1\r\nContent-Length: abc\r\n\r\n")

			var merr MalformedRequestError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
		})

		t.Run("if a cookie pair has no equals sign", func(t *testing.T) {
			_, err := readRequestString("GET /item HTTP/1.1\r\nCookie: session\r\n\r\n")

			var merr MalformedRequestError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
		})

		t.Run("if the body is shorter than the declared content length", func(t *testing.T) {
			raw := "POST /item HTTP/1.1\r\n" +
				"Content-Length: 100\r\n" +
				"\r\n" +
				"short"

			_, err := readRequestString(raw)

			var merr MalformedRequestError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
		})

		t.Run("if a json body is not valid json", func(t *testing.T) {
			body := `{"name": `
			raw := "POST /item HTTP/1.1\r\n" +
				"Content-Type: application/json\r\n" +
				"Content-Length: " + strconv.Itoa(len(body)) + "\r\n" +
				"\r\n" +
				body

			_, err := readRequestString(raw)

			var merr MalformedRequestError
			if !assert.ErrorAs(t, err, &merr) {
				return
			}
		})
	})
}

// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wire

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QueryParam is a single query string entry. Declared reports whether
// the parameter was named by the matched handler, in which case its
// Value has been type converted. Undeclared entries pass through
// untyped as raw strings.
type QueryParam struct {
	Name     string
	Value    any
	Declared bool
}

// QueryParams holds the query string entries of a request in
// insertion order.
type QueryParams struct {
	params map[string]*QueryParam
	names  []string
}

// Add sets the entry for name, overwriting any previous value while
// keeping its original position.
func (q *QueryParams) Add(name string, value any, declared bool) {
	if q.params == nil {
		q.params = make(map[string]*QueryParam)
	}
	if p, ok := q.params[name]; ok {
		p.Value = value
		p.Declared = declared
		return
	}
	q.params[name] = &QueryParam{Name: name, Value: value, Declared: declared}
	q.names = append(q.names, name)
}

// Get returns the entry for name.
func (q *QueryParams) Get(name string) (QueryParam, bool) {
	p, ok := q.params[name]
	if !ok {
		return QueryParam{}, false
	}
	return *p, true
}

// Len returns the number of entries.
func (q *QueryParams) Len() int {
	return len(q.names)
}

// Names returns the entry names in insertion order.
func (q *QueryParams) Names() []string {
	return append([]string(nil), q.names...)
}

// Values flattens the entries into a plain name to value mapping.
func (q *QueryParams) Values() map[string]any {
	m := make(map[string]any, len(q.names))
	for _, name := range q.names {
		m[name] = q.params[name].Value
	}
	return m
}

// PathParam is a single path segment bound to a template placeholder.
type PathParam struct {
	Name  string
	Value any
}

// PathParams holds the converted path parameters of a request in
// template order.
type PathParams struct {
	params map[string]*PathParam
	names  []string
}

// Add sets the entry for name.
func (p *PathParams) Add(name string, value any) {
	if p.params == nil {
		p.params = make(map[string]*PathParam)
	}
	if pp, ok := p.params[name]; ok {
		pp.Value = value
		return
	}
	p.params[name] = &PathParam{Name: name, Value: value}
	p.names = append(p.names, name)
}

// Get returns the entry for name.
func (p *PathParams) Get(name string) (PathParam, bool) {
	pp, ok := p.params[name]
	if !ok {
		return PathParam{}, false
	}
	return *pp, true
}

// Len returns the number of entries.
func (p *PathParams) Len() int {
	return len(p.names)
}

// Values flattens the entries into a plain name to value mapping.
func (p *PathParams) Values() map[string]any {
	m := make(map[string]any, len(p.names))
	for _, name := range p.names {
		m[name] = p.params[name].Value
	}
	return m
}

// HeaderParam is a single header entry. The original casing of Name is
// retained for serialization while lookups are case-insensitive.
type HeaderParam struct {
	Name  string
	Value any
}

// Headers holds the header entries of a request or response along with
// any cookies carried by it.
type Headers struct {
	params map[string]*HeaderParam
	names  []string

	cookies Cookies
}

// NewHeaders returns Headers populated from the given name/value pairs.
func NewHeaders(params ...HeaderParam) Headers {
	var h Headers
	for _, p := range params {
		h.Add(p.Name, p.Value)
	}
	return h
}

// Add sets the entry for name. Name comparison is case-insensitive but
// the casing given first is kept for serialization.
func (h *Headers) Add(name string, value any) {
	key := strings.ToLower(name)
	if h.params == nil {
		h.params = make(map[string]*HeaderParam)
	}
	if p, ok := h.params[key]; ok {
		p.Value = value
		return
	}
	h.params[key] = &HeaderParam{Name: name, Value: value}
	h.names = append(h.names, key)
}

// Get returns the value for name, comparing case-insensitively.
func (h *Headers) Get(name string) (any, bool) {
	p, ok := h.params[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return p.Value, true
}

// Len returns the number of header entries, cookies excluded.
func (h *Headers) Len() int {
	return len(h.names)
}

// Cookies returns the cookies attached to these headers.
func (h *Headers) Cookies() *Cookies {
	return &h.cookies
}

// AddCookie attaches a cookie.
func (h *Headers) AddCookie(c Cookie) {
	h.cookies.Add(c)
}

// SetCookies replaces all attached cookies.
func (h *Headers) SetCookies(cookies Cookies) {
	h.cookies = cookies
}

// Values flattens headers and cookie values into one name to value
// mapping. The raw Cookie header itself is excluded since its parsed
// entries are already present.
func (h *Headers) Values() map[string]any {
	m := h.cookies.Values()
	for _, key := range h.names {
		if key == "cookie" {
			continue
		}
		p := h.params[key]
		m[p.Name] = p.Value
	}
	return m
}

// write emits each header as a "Name: value" line followed by one
// Set-Cookie line per attached cookie.
func (h *Headers) write(sb *strings.Builder) {
	for _, key := range h.names {
		p := h.params[key]
		fmt.Fprintf(sb, "%s: %v\r\n", p.Name, p.Value)
	}
	h.cookies.write(sb)
}

// Cookie is a single cookie with its optional response attributes.
// A zero Expires, zero MaxAge or empty string attribute is omitted
// from serialization.
type Cookie struct {
	Name     string
	Value    any
	Expires  time.Time
	MaxAge   int
	Domain   string
	Path     string
	SameSite string
	Priority string
	Secure   bool
	HttpOnly bool
}

// String serializes the cookie as it appears after "Set-Cookie: ".
func (c Cookie) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s=%v", c.Name, c.Value)
	if !c.Expires.IsZero() {
		sb.WriteString("; Expires=")
		sb.WriteString(c.Expires.Format(time.RFC3339))
	}
	if c.MaxAge != 0 {
		fmt.Fprintf(&sb, "; Max-Age=%d", c.MaxAge)
	}
	if c.Domain != "" {
		sb.WriteString("; Domain=")
		sb.WriteString(c.Domain)
	}
	if c.Path != "" {
		sb.WriteString("; Path=")
		sb.WriteString(c.Path)
	}
	if c.SameSite != "" {
		sb.WriteString("; SameSite=")
		sb.WriteString(c.SameSite)
	}
	if c.Priority != "" {
		sb.WriteString("; Priority=")
		sb.WriteString(c.Priority)
	}
	if c.Secure {
		sb.WriteString("; Secure")
	}
	if c.HttpOnly {
		sb.WriteString("; HttpOnly")
	}
	return sb.String()
}

// Cookies holds cookies in insertion order.
type Cookies struct {
	cookies map[string]*Cookie
	names   []string
}

// ParseCookies parses the value of a Cookie request header into
// individual cookies. Pairs are separated by ";" and split on the
// first "=". A pair without "=" is a hard failure.
func ParseCookies(s string) (Cookies, error) {
	var cookies Cookies
	for _, pair := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return Cookies{}, fmt.Errorf("malformed cookie pair: %q", pair)
		}
		cookies.Add(Cookie{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return cookies, nil
}

// Add sets the cookie, overwriting any previous cookie of the same name.
func (cs *Cookies) Add(c Cookie) {
	if cs.cookies == nil {
		cs.cookies = make(map[string]*Cookie)
	}
	if _, ok := cs.cookies[c.Name]; !ok {
		cs.names = append(cs.names, c.Name)
	}
	cc := c
	cs.cookies[c.Name] = &cc
}

// Get returns the cookie for name.
func (cs *Cookies) Get(name string) (Cookie, bool) {
	c, ok := cs.cookies[name]
	if !ok {
		return Cookie{}, false
	}
	return *c, true
}

// Update replaces the value of the named cookie, creating it if absent.
func (cs *Cookies) Update(name string, value any) {
	if c, ok := cs.cookies[name]; ok {
		c.Value = value
		return
	}
	cs.Add(Cookie{Name: name, Value: value})
}

// Len returns the number of cookies.
func (cs *Cookies) Len() int {
	return len(cs.names)
}

// Values flattens the cookies into a plain name to value mapping.
func (cs *Cookies) Values() map[string]any {
	m := make(map[string]any, len(cs.names))
	for _, name := range cs.names {
		m[name] = cs.cookies[name].Value
	}
	return m
}

func (cs *Cookies) write(sb *strings.Builder) {
	for _, name := range cs.names {
		sb.WriteString("Set-Cookie: ")
		sb.WriteString(cs.cookies[name].String())
		sb.WriteString("\r\n")
	}
}

// Body wraps either a structured, JSON serializable value or a
// pre-rendered string. Serialization decides which based on the
// runtime type.
type Body struct {
	value any
}

// NewBody wraps v.
func NewBody(v any) Body {
	return Body{value: v}
}

// Value returns the wrapped value.
func (b Body) Value() any {
	return b.value
}

// IsZero reports whether the body holds no value.
func (b Body) IsZero() bool {
	return b.value == nil
}

// String renders the body for the wire: strings and byte slices pass
// through unchanged, anything else is JSON encoded.
func (b Body) String() string {
	switch v := b.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		enc, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(enc)
	}
}

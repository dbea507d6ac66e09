// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/wirebind/wirebind/rest/mux"
	"github.com/wirebind/wirebind/wire"
)

// Source identifies where a declared parameter is bound from.
type Source int

const (
	SourcePath Source = iota
	SourceQuery
	SourceHeader
	SourceCookie
	SourceBody
	SourceContext
)

// String implements the [fmt.Stringer] interface.
func (s Source) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	case SourceBody:
		return "body"
	case SourceContext:
		return "context"
	default:
		return "unknown"
	}
}

// param is the compiled form of one declared request parameter.
type param struct {
	name     string
	index    []int
	source   Source
	typ      reflect.Type
	typeName string
	convert  ConverterFn

	hasDefault   bool
	defaultValue any
}

// Descriptor is the compiled, immutable metadata for one registered
// route. It is created once at registration time and owned by the
// registry thereafter.
type Descriptor struct {
	method        mux.Method
	template      string
	literalPrefix string

	pathParams   []*param
	queryParams  []*param
	headerParams []*param
	cookieParams []*param
	body         *param
	contextIndex []int

	reqType    reflect.Type
	returnType reflect.Type
	statusCode int

	handle func(context.Context, any) (any, error)
}

// Method returns the HTTP method the descriptor is registered for.
func (d *Descriptor) Method() mux.Method {
	return d.method
}

// Template implements the [mux.Route] interface.
func (d *Descriptor) Template() string {
	return d.template
}

// LiteralPrefix implements the [mux.Route] interface.
func (d *Descriptor) LiteralPrefix() string {
	return d.literalPrefix
}

// PathParamCount implements the [mux.Route] interface.
func (d *Descriptor) PathParamCount() int {
	return len(d.pathParams)
}

// ValidatePathSegment implements the [mux.Route] interface.
func (d *Descriptor) ValidatePathSegment(i int, raw string) error {
	_, err := d.pathParams[i].convert(raw)
	return err
}

var templateParamPattern = regexp.MustCompile(`\{([^{}]+)\}`)

var requestContextType = reflect.TypeOf((*wire.Request)(nil))

// InvalidDeclarationError occurs at registration time when a route
// template and its handler's request type cannot be compiled into a
// descriptor.
type InvalidDeclarationError struct {
	Template string
	Reason   string
}

// Error implements the [error] interface.
func (e InvalidDeclarationError) Error() string {
	return fmt.Sprintf("invalid route declaration %q: %s", e.Template, e.Reason)
}

// classify derives a Descriptor from a route template and the declared
// request struct type. Each exported field is assigned a source with
// the following precedence: a "header" tag, a "cookie" tag, a (tag or
// lowercased field) name matching a template placeholder, the request
// context type, a structured type (body), and finally query.
func classify(method mux.Method, template string, reqType, returnType reflect.Type) (*Descriptor, error) {
	if reqType.Kind() != reflect.Struct {
		return nil, InvalidDeclarationError{
			Template: template,
			Reason:   fmt.Sprintf("request type must be a struct, got %s", reqType),
		}
	}

	pathNames := make([]string, 0)
	for _, m := range templateParamPattern.FindAllStringSubmatch(template, -1) {
		pathNames = append(pathNames, m[1])
	}

	d := &Descriptor{
		method:        method,
		template:      template,
		literalPrefix: literalPrefix(template),
		pathParams:    make([]*param, len(pathNames)),
		reqType:       reqType,
		returnType:    returnType,
		statusCode:    DefaultStatusCode,
	}

	for i := 0; i < reqType.NumField(); i++ {
		field := reqType.Field(i)
		if !field.IsExported() {
			continue
		}

		err := classifyField(d, field, pathNames)
		if err != nil {
			return nil, InvalidDeclarationError{Template: template, Reason: err.Error()}
		}
	}

	for i, p := range d.pathParams {
		if p == nil {
			return nil, InvalidDeclarationError{
				Template: template,
				Reason:   fmt.Sprintf("path parameter %q is not declared by the handler", pathNames[i]),
			}
		}
	}
	return d, nil
}

func classifyField(d *Descriptor, field reflect.StructField, pathNames []string) error {
	if name, ok := field.Tag.Lookup("header"); ok {
		p, err := newParam(field, headerName(name, field))
		if err != nil {
			return err
		}
		p.source = SourceHeader
		d.headerParams = append(d.headerParams, p)
		return nil
	}

	if name, ok := field.Tag.Lookup("cookie"); ok {
		p, err := newParam(field, paramName(name, field))
		if err != nil {
			return err
		}
		p.source = SourceCookie
		d.cookieParams = append(d.cookieParams, p)
		return nil
	}

	name := field.Tag.Get("path")
	if name == "" {
		name = field.Tag.Get("query")
	}
	name = paramName(name, field)

	if i := indexOf(pathNames, name); i >= 0 {
		p, err := newParam(field, name)
		if err != nil {
			return err
		}
		p.source = SourcePath
		d.pathParams[i] = p
		return nil
	}

	if field.Type == requestContextType {
		d.contextIndex = field.Index
		return nil
	}

	if isStructured(field.Type) {
		// Multiple structured fields are a misconfiguration that is
		// not defended against; the last one wins.
		d.body = &param{
			name:     name,
			index:    field.Index,
			source:   SourceBody,
			typ:      field.Type,
			typeName: field.Type.String(),
		}
		return nil
	}

	p, err := newParam(field, name)
	if err != nil {
		return err
	}
	p.source = SourceQuery
	d.queryParams = append(d.queryParams, p)
	return nil
}

func newParam(field reflect.StructField, name string) (*param, error) {
	convert, err := converterFor(field.Type)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", name, err)
	}

	p := &param{
		name:     name,
		index:    field.Index,
		typ:      field.Type,
		typeName: field.Type.String(),
		convert:  convert,
	}

	if raw, ok := field.Tag.Lookup("default"); ok {
		v, err := convert(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: invalid default: %w", name, err)
		}
		p.hasDefault = true
		p.defaultValue = v
	}
	return p, nil
}

func paramName(tagName string, field reflect.StructField) string {
	if tagName != "" {
		return tagName
	}
	return strings.ToLower(field.Name)
}

func headerName(tagName string, field reflect.StructField) string {
	if tagName != "" {
		return tagName
	}
	return field.Name
}

// literalPrefix truncates the template at its first placeholder and
// strips any trailing "/", so "/foo/" and "/foo" register identically.
func literalPrefix(template string) string {
	prefix := template
	if i := strings.Index(template, "{"); i >= 0 {
		prefix = template[:i]
	}
	if len(prefix) > 0 && strings.HasSuffix(prefix, "/") {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

// isStructured reports whether t is a record-like type bound from the
// request body. The request context type is not a record type.
func isStructured(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	case reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

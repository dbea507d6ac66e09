// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/wirebind/wirebind/wire"
)

// ValidationError occurs when a declared path, query, header or cookie
// parameter is absent from the request without a default, or when a
// value is rejected by its type converter.
type ValidationError struct {
	Field    string
	Expected string
	Actual   any
}

// Error implements the [error] interface.
func (e ValidationError) Error() string {
	if e.Actual == nil {
		return fmt.Sprintf("%s not given, expected type %s", e.Field, e.Expected)
	}
	return fmt.Sprintf("%s: expected type %s, found %T, value %v", e.Field, e.Expected, e.Actual, e.Actual)
}

// MissingParameterError occurs when a declared handler parameter has
// no source in the bound request.
type MissingParameterError struct {
	Name string
}

// Error implements the [error] interface.
func (e MissingParameterError) Error() string {
	return fmt.Sprintf("%s not provided", e.Name)
}

// bind combines the parsed request and the matched path segments into
// the handler's request value. Declared query, header and cookie
// entries are converted in place on the request so their containers
// carry typed values; undeclared extras pass through untouched.
func (d *Descriptor) bind(req *wire.Request, segments []string) (any, error) {
	rv := reflect.New(d.reqType).Elem()

	err := d.bindPath(rv, req, segments)
	if err != nil {
		return nil, err
	}

	err = d.bindQuery(rv, req)
	if err != nil {
		return nil, err
	}

	err = d.bindHeaders(rv, req)
	if err != nil {
		return nil, err
	}

	err = d.bindCookies(rv, req)
	if err != nil {
		return nil, err
	}

	err = d.bindBody(rv, req)
	if err != nil {
		return nil, err
	}

	if d.contextIndex != nil {
		rv.FieldByIndex(d.contextIndex).Set(reflect.ValueOf(req))
	}
	return rv.Interface(), nil
}

func (d *Descriptor) bindPath(rv reflect.Value, req *wire.Request, segments []string) error {
	for i, p := range d.pathParams {
		if i >= len(segments) {
			return MissingParameterError{Name: p.name}
		}

		v, err := p.convert(segments[i])
		if err != nil {
			return ValidationError{Field: p.name, Expected: p.typeName, Actual: segments[i]}
		}
		rv.FieldByIndex(p.index).Set(reflect.ValueOf(v))
		req.PathParams.Add(p.name, v)
	}
	return nil
}

func (d *Descriptor) bindQuery(rv reflect.Value, req *wire.Request) error {
	for _, p := range d.queryParams {
		entry, ok := req.Query.Get(p.name)

		var v any
		switch {
		case ok:
			converted, err := p.convert(fmt.Sprint(entry.Value))
			if err != nil {
				return ValidationError{Field: p.name, Expected: p.typeName, Actual: entry.Value}
			}
			v = converted
		case p.hasDefault:
			v = p.defaultValue
		default:
			return ValidationError{Field: p.name, Expected: p.typeName}
		}

		rv.FieldByIndex(p.index).Set(reflect.ValueOf(v))
		req.Query.Add(p.name, v, true)
	}
	return nil
}

func (d *Descriptor) bindHeaders(rv reflect.Value, req *wire.Request) error {
	for _, p := range d.headerParams {
		raw, ok := req.Headers.Get(p.name)

		var v any
		switch {
		case ok:
			converted, err := p.convert(fmt.Sprint(raw))
			if err != nil {
				return ValidationError{Field: p.name, Expected: p.typeName, Actual: raw}
			}
			v = converted
		case p.hasDefault:
			v = p.defaultValue
		default:
			return ValidationError{Field: p.name, Expected: p.typeName}
		}

		rv.FieldByIndex(p.index).Set(reflect.ValueOf(v))
		req.Headers.Add(p.name, v)
	}
	return nil
}

func (d *Descriptor) bindCookies(rv reflect.Value, req *wire.Request) error {
	for _, p := range d.cookieParams {
		c, ok := req.Cookies().Get(p.name)

		var v any
		switch {
		case ok:
			converted, err := p.convert(fmt.Sprint(c.Value))
			if err != nil {
				return ValidationError{Field: p.name, Expected: p.typeName, Actual: c.Value}
			}
			v = converted
		case p.hasDefault:
			v = p.defaultValue
		default:
			return ValidationError{Field: p.name, Expected: p.typeName}
		}

		rv.FieldByIndex(p.index).Set(reflect.ValueOf(v))
		req.Cookies().Update(p.name, v)
	}
	return nil
}

func (d *Descriptor) bindBody(rv reflect.Value, req *wire.Request) error {
	if d.body == nil {
		return nil
	}

	raw := req.RawBody()
	field := rv.FieldByIndex(d.body.index)

	if d.body.typ == reflect.TypeOf([]byte(nil)) {
		field.SetBytes(raw)
		return nil
	}

	if len(raw) == 0 {
		return ValidationError{Field: d.body.name, Expected: d.body.typeName}
	}

	ptr := reflect.New(d.body.typ)
	err := json.Unmarshal(raw, ptr.Interface())
	if err != nil {
		return ValidationError{Field: d.body.name, Expected: d.body.typeName, Actual: string(raw)}
	}
	field.Set(ptr.Elem())
	return nil
}

// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"fmt"
	"reflect"
	"strconv"
)

// ConverterFn converts a raw wire value into a typed value. One is
// compiled per path, query, header and cookie parameter at
// registration time so the binder never inspects types per request.
type ConverterFn func(raw string) (any, error)

// ConversionError occurs when a raw value is rejected by a parameter's
// type converter.
type ConversionError struct {
	Value string
	Type  string
	Cause error
}

// Error implements the [error] interface.
func (e ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %s", e.Value, e.Type, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConversionError) Unwrap() error {
	return e.Cause
}

// UnsupportedTypeError occurs at registration time when a declared
// parameter has a type no converter can be compiled for.
type UnsupportedTypeError struct {
	Type reflect.Type
}

// Error implements the [error] interface.
func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no converter for parameter type: %s", e.Type)
}

// converterFor compiles a ConverterFn producing values of type t.
func converterFor(t reflect.Type) (ConverterFn, error) {
	typeName := t.String()

	switch t.Kind() {
	case reflect.String:
		return func(raw string) (any, error) {
			return reflect.ValueOf(raw).Convert(t).Interface(), nil
		}, nil
	case reflect.Bool:
		return func(raw string) (any, error) {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, ConversionError{Value: raw, Type: typeName, Cause: err}
			}
			return reflect.ValueOf(b).Convert(t).Interface(), nil
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(raw string) (any, error) {
			n, err := strconv.ParseInt(raw, 10, t.Bits())
			if err != nil {
				return nil, ConversionError{Value: raw, Type: typeName, Cause: err}
			}
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(raw string) (any, error) {
			n, err := strconv.ParseUint(raw, 10, t.Bits())
			if err != nil {
				return nil, ConversionError{Value: raw, Type: typeName, Cause: err}
			}
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(raw string) (any, error) {
			f, err := strconv.ParseFloat(raw, t.Bits())
			if err != nil {
				return nil, ConversionError{Value: raw, Type: typeName, Cause: err}
			}
			return reflect.ValueOf(f).Convert(t).Interface(), nil
		}, nil
	default:
		return nil, UnsupportedTypeError{Type: t}
	}
}

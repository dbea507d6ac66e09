// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/wirebind/wirebind/internal/try"
	"github.com/wirebind/wirebind/wire"

	"github.com/go-viper/mapstructure/v2"
)

// ResponseTypeError occurs when a handler's return value cannot be
// coerced to its declared return type.
type ResponseTypeError struct {
	Expected string
	Actual   any
}

// Error implements the [error] interface.
func (e ResponseTypeError) Error() string {
	return fmt.Sprintf("return type could not be verified: expected %s, found %T", e.Expected, e.Actual)
}

// HttpError is an error a handler can return to produce a specific
// status code and detail message. Construct it with [NewHttpError] so
// the status code is validated against the known status table.
type HttpError struct {
	StatusCode int
	Detail     string
}

// NewHttpError initializes an HttpError, failing with
// [wire.UnknownStatusCodeError] if the status code is not in the
// known table.
func NewHttpError(statusCode int, detail string) error {
	_, ok := wire.StatusText(statusCode)
	if !ok {
		return wire.UnknownStatusCodeError{Code: statusCode}
	}
	return HttpError{StatusCode: statusCode, Detail: detail}
}

// Error implements the [error] interface.
func (e HttpError) Error() string {
	return e.Detail
}

// Dispatch implements the [mux.Route] interface. It binds the request,
// invokes the handler and coerces the return value into a response.
// A panicking handler surfaces as an error instead of unwinding into
// the serving goroutine.
func (d *Descriptor) Dispatch(ctx context.Context, req *wire.Request, segments []string) (_ *wire.Response, err error) {
	defer try.Recover(&err)

	req.Route = routeOf(req.Path, len(segments))

	reqVal, err := d.bind(req, segments)
	if err != nil {
		return nil, err
	}

	out, err := d.handle(ctx, reqVal)
	if err != nil {
		return nil, err
	}
	return d.coerceReturn(out)
}

// routeOf strips the trailing n path parameter segments from path.
func routeOf(path string, n int) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	if n == 0 {
		return path
	}
	parts := strings.Split(path, "/")
	return strings.Join(parts[:len(parts)-n], "/")
}

// coerceReturn turns a handler's return value into a full response.
// A *wire.Response passes through untouched; anything else is checked
// against the declared return type and wrapped into a default
// "application/json" response with the descriptor's status code.
func (d *Descriptor) coerceReturn(v any) (*wire.Response, error) {
	if resp, ok := v.(*wire.Response); ok {
		if resp == nil {
			return nil, ResponseTypeError{Expected: "*wire.Response", Actual: nil}
		}
		return resp, nil
	}

	if d.returnType != nil {
		coerced, err := coerceTo(d.returnType, v)
		if err != nil {
			return nil, err
		}
		v = coerced
	}

	return wire.NewResponse(
		d.statusCode,
		wire.WithHeader("Content-Type", "application/json"),
		wire.WithBody(wire.NewBody(v)),
	)
}

// coerceTo converts v to the declared return type rt. An instance of
// rt passes through; a string is parsed as the JSON text of a record
// type; a generic mapping is decoded into a record type; scalars are
// converted directly. Anything else fails with [ResponseTypeError].
func coerceTo(rt reflect.Type, v any) (any, error) {
	if v == nil {
		return nil, ResponseTypeError{Expected: rt.String(), Actual: nil}
	}

	dt := reflect.TypeOf(v)
	if dt.AssignableTo(rt) {
		return v, nil
	}

	if isStructured(rt) {
		return coerceRecord(rt, v)
	}

	if rt.Kind() == reflect.String {
		return reflect.ValueOf(fmt.Sprint(v)).Convert(rt).Interface(), nil
	}

	if s, ok := v.(string); ok {
		convert, err := converterFor(rt)
		if err != nil {
			return nil, ResponseTypeError{Expected: rt.String(), Actual: v}
		}
		coerced, err := convert(s)
		if err != nil {
			return nil, ResponseTypeError{Expected: rt.String(), Actual: v}
		}
		return coerced, nil
	}

	if isNumeric(dt) && isNumeric(rt) {
		return reflect.ValueOf(v).Convert(rt).Interface(), nil
	}
	return nil, ResponseTypeError{Expected: rt.String(), Actual: v}
}

func coerceRecord(rt reflect.Type, v any) (any, error) {
	ptr := reflect.New(rt)

	switch x := v.(type) {
	case string:
		err := json.Unmarshal([]byte(x), ptr.Interface())
		if err != nil {
			return nil, ResponseTypeError{Expected: rt.String(), Actual: v}
		}
	case []byte:
		err := json.Unmarshal(x, ptr.Interface())
		if err != nil {
			return nil, ResponseTypeError{Expected: rt.String(), Actual: v}
		}
	default:
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "json",
			Result:  ptr.Interface(),
		})
		if err != nil {
			return nil, ResponseTypeError{Expected: rt.String(), Actual: v}
		}
		err = dec.Decode(v)
		if err != nil {
			return nil, ResponseTypeError{Expected: rt.String(), Actual: v}
		}
	}
	return ptr.Elem().Interface(), nil
}

func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

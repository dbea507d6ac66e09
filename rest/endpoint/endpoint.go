// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint compiles typed request handlers into route
// descriptors and binds parsed wire requests to their arguments.
//
// A handler declares its parameters through the fields of its request
// struct. Struct tags assign the wire source and name:
//
//	type getItem struct {
//		ID     int           `path:"id"`
//		Limit  int           `query:"limit" default:"10"`
//		Auth   string        `header:"Authorization"`
//		Session string       `cookie:"session"`
//		Req    *wire.Request
//	}
//
// An untagged field is classified by precedence: a name matching a
// template placeholder binds from the path, a *wire.Request field
// receives the request context, a struct typed field binds from the
// body and everything else binds from the query string. Fields without
// a "default" tag are required.
package endpoint

import (
	"context"
	"fmt"
	"reflect"

	"github.com/wirebind/wirebind/rest/mux"
	"github.com/wirebind/wirebind/wire"
)

// Empty
type Empty struct{}

// Handler
type Handler[Req, Resp any] interface {
	Handle(context.Context, Req) (Resp, error)
}

// HandlerFunc
type HandlerFunc[Req, Resp any] func(context.Context, Req) (Resp, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// DefaultStatusCode is the status code responses are wrapped with when
// a handler does not return a full *wire.Response itself.
var DefaultStatusCode = 200

type options struct {
	statusCode int
	returnType reflect.Type
}

// Option
type Option func(*options)

// StatusCode overrides the status code used when wrapping handler
// return values. An unknown code surfaces as a
// [wire.UnknownStatusCodeError] when the response is constructed.
func StatusCode(statusCode int) Option {
	return func(o *options) {
		o.statusCode = statusCode
	}
}

// ReturnAs declares the return annotation independently of the
// handler's static return type. Handler return values are then coerced
// to T: instances pass through, JSON text and generic mappings are
// parsed into record types, scalars are converted, and anything else
// fails with [ResponseTypeError].
func ReturnAs[T any]() Option {
	return func(o *options) {
		o.returnType = reflect.TypeOf((*T)(nil)).Elem()
	}
}

// Operation is a compiled endpoint, ready to be registered with a
// router. It implements [mux.Route].
type Operation[Req, Resp any] struct {
	*Descriptor

	handler Handler[Req, Resp]
}

// New compiles an Operation from a method, route template and handler.
// Classification happens here, once; the per-request binder only reads
// the compiled descriptor. New panics if the template and request type
// cannot be compiled, since a misdeclared route is a programming error
// caught at startup registration.
func New[Req, Resp any](method mux.Method, template string, h Handler[Req, Resp], opts ...Option) *Operation[Req, Resp] {
	o := &options{
		statusCode: DefaultStatusCode,
		returnType: returnTypeOf[Resp](),
	}
	for _, opt := range opts {
		opt(o)
	}

	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	desc, err := classify(method, template, reqType, o.returnType)
	if err != nil {
		panic(fmt.Sprintf("endpoint: %s", err))
	}
	desc.statusCode = o.statusCode
	desc.handle = func(ctx context.Context, v any) (any, error) {
		return h.Handle(ctx, v.(Req))
	}

	return &Operation[Req, Resp]{
		Descriptor: desc,
		handler:    h,
	}
}

// Get returns an Operation for handling HTTP GET requests.
func Get[Req, Resp any](template string, h Handler[Req, Resp], opts ...Option) *Operation[Req, Resp] {
	return New(mux.MethodGet, template, h, opts...)
}

// Post returns an Operation for handling HTTP POST requests.
func Post[Req, Resp any](template string, h Handler[Req, Resp], opts ...Option) *Operation[Req, Resp] {
	return New(mux.MethodPost, template, h, opts...)
}

// Put returns an Operation for handling HTTP PUT requests.
func Put[Req, Resp any](template string, h Handler[Req, Resp], opts ...Option) *Operation[Req, Resp] {
	return New(mux.MethodPut, template, h, opts...)
}

// Patch returns an Operation for handling HTTP PATCH requests.
func Patch[Req, Resp any](template string, h Handler[Req, Resp], opts ...Option) *Operation[Req, Resp] {
	return New(mux.MethodPatch, template, h, opts...)
}

// Delete returns an Operation for handling HTTP DELETE requests.
func Delete[Req, Resp any](template string, h Handler[Req, Resp], opts ...Option) *Operation[Req, Resp] {
	return New(mux.MethodDelete, template, h, opts...)
}

// returnTypeOf resolves the declared return annotation from the
// handler's static response type. Interface types, Empty and
// *wire.Response carry no annotation.
func returnTypeOf[Resp any]() reflect.Type {
	t := reflect.TypeOf((*Resp)(nil)).Elem()
	switch {
	case t.Kind() == reflect.Interface:
		return nil
	case t == reflect.TypeOf(Empty{}):
		return nil
	case t == reflect.TypeOf((*wire.Response)(nil)):
		return nil
	default:
		return t
	}
}

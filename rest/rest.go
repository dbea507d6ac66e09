// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest serves registered operations over raw TCP, one
// HTTP/1.1 request per connection. The wire codec, router and binder
// are all hand rolled; no net/http server is involved.
package rest

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/wirebind/wirebind/rest/endpoint"
	"github.com/wirebind/wirebind/rest/mux"
	"github.com/wirebind/wirebind/wire"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/swaggest/openapi-go/openapi3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Operation represents anything that can be matched and dispatched by
// the router and provide OpenAPI documentation for itself.
type Operation interface {
	mux.Route

	Method() mux.Method
	OpenApi() openapi3.Operation
}

// Option represents configurable attributes of [App].
type Option func(*App)

// Listener allows you to configure the [net.Listener] used for
// serving requests. If this option is not supplied, then [net.Listen]
// will be used to create a [net.Listener] for "tcp" and the configured
// address.
func Listener(ls net.Listener) Option {
	return func(a *App) {
		a.ls = ls
	}
}

// Addr sets the address to listen on when no [Listener] is supplied.
//
// Default: "localhost:8080".
func Addr(addr string) Option {
	return func(a *App) {
		a.addr = addr
	}
}

// LogHandler configures the [slog.Handler] used for logging
// connection level failures.
func LogHandler(h slog.Handler) Option {
	return func(a *App) {
		a.log = slog.New(h)
	}
}

// Register registers the [Operation] with both the app wide OpenAPI
// spec and the app wide router.
func Register(op Operation) Option {
	return func(a *App) {
		a.ops = append(a.ops, op)
	}
}

// Title sets the title of the API in its OpenAPI spec.
func Title(s string) Option {
	return func(a *App) {
		a.spec.Info.Title = s
	}
}

// Version sets the API version in its OpenAPI spec.
func Version(s string) Option {
	return func(a *App) {
		a.spec.Info.Version = s
	}
}

// OpenApiEndpoint serves the app wide OpenAPI spec as JSON from the
// given route template. The spec endpoint itself is not added to the
// spec.
func OpenApiEndpoint(template string) Option {
	return func(a *App) {
		a.openApiTemplate = template
	}
}

// App serves registered operations over raw TCP. The router is built
// once inside Run, before the accept loop starts, and is read-only
// for the remainder of the process lifetime.
type App struct {
	ls   net.Listener
	addr string

	spec            *openapi3.Spec
	router          *mux.Router
	ops             []Operation
	openApiTemplate string

	metrics         *metrics
	gatherer        prometheus.Gatherer
	metricsTemplate string

	log    *slog.Logger
	listen func(network, addr string) (net.Listener, error)
}

// NewApp initializes a [App].
func NewApp(opts ...Option) *App {
	app := &App{
		addr: "localhost:8080",
		spec: &openapi3.Spec{
			Openapi: "3.0.3",
		},
		router: mux.NewRouter(),
		log:    slog.New(discardHandler{}),
		listen: net.Listen,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run builds the router from the registered operations and serves
// until the given context is cancelled. Each accepted connection is
// served by its own goroutine and closed after one request.
func (app *App) Run(ctx context.Context) error {
	err := app.registerOperations()
	if err != nil {
		return err
	}

	ls, err := app.listener()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		for {
			conn, err := ls.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return nil
				}
				return err
			}
			go app.serveConn(egctx, conn)
		}
	})
	eg.Go(func() error {
		<-egctx.Done()
		return ls.Close()
	})
	return eg.Wait()
}

func (app *App) listener() (net.Listener, error) {
	if app.ls != nil {
		return app.ls, nil
	}
	return app.listen("tcp", app.addr)
}

func (app *App) registerOperations() error {
	for _, op := range app.ops {
		err := app.spec.AddOperation(string(op.Method()), op.Template(), op.OpenApi())
		if err != nil {
			return err
		}
		app.router.Handle(op.Method(), op)
	}
	app.ops = nil

	if app.openApiTemplate != "" {
		app.router.Handle(mux.MethodGet, openApiOperation(app.openApiTemplate, app.spec))
	}
	if app.metricsTemplate != "" {
		app.router.Handle(mux.MethodGet, metricsOperation(app.metricsTemplate, app.gatherer))
	}
	return nil
}

// serveConn owns the full lifecycle of one connection: parse,
// resolve, dispatch, write, close. Every error kind surfaces to the
// client as a best-effort response; if writing that response fails the
// connection gets a bare 500 line so it is never left hanging.
func (app *App) serveConn(ctx context.Context, conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	// Last resort: a panic anywhere below must not take the whole
	// process down with it.
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		app.log.ErrorContext(ctx, "recovered from panic while serving connection", slog.Any("panic", r))
		_, _ = io.WriteString(conn, "HTTP/1.1 500 Internal Server\r\n")
	}()

	tracer := otel.Tracer("rest")
	spanCtx, span := tracer.Start(ctx, "rest.serveConn")
	defer span.End()

	start := time.Now()
	resp, method, route := app.handle(spanCtx, bufio.NewReader(conn))
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", resp.StatusCode),
	)
	app.metrics.record(method, resp.StatusCode, time.Since(start).Seconds())

	_, err := resp.WriteTo(conn)
	if err == nil {
		return
	}

	app.log.ErrorContext(spanCtx, "failed to write response",
		slog.String("method", method),
		slog.String("route", route),
		slog.String("error", err.Error()),
	)

	_, err = io.WriteString(conn, "HTTP/1.1 500 Internal Server\r\n")
	if err != nil {
		app.log.ErrorContext(spanCtx, "failed to write fallback response", slog.String("error", err.Error()))
	}
}

func (app *App) handle(ctx context.Context, br *bufio.Reader) (resp *wire.Response, method, route string) {
	req, err := wire.ReadRequest(br)
	if err != nil {
		return app.errorResponse(ctx, err), "", ""
	}
	method = req.Method
	route = req.Path

	matched, segments, err := app.router.Resolve(mux.Method(req.Method), req.Path)
	if err != nil {
		return app.errorResponse(ctx, err), method, route
	}

	resp, err = matched.Dispatch(ctx, req, segments)
	if err != nil {
		return app.errorResponse(ctx, err), method, matched.Template()
	}
	return resp, method, matched.Template()
}

// errorResponse maps an error kind to its response: 400 for malformed
// requests, 404 for unresolved routes, 422 for binding and validation
// failures and 500 for everything else. The body names the failure as
// {"detail": ...} JSON.
func (app *App) errorResponse(ctx context.Context, err error) *wire.Response {
	statusCode := 500

	var malformedErr wire.MalformedRequestError
	var notFoundErr mux.RouteNotFoundError
	var validationErr endpoint.ValidationError
	var missingErr endpoint.MissingParameterError
	var httpErr endpoint.HttpError
	switch {
	case errors.As(err, &malformedErr):
		statusCode = 400
	case errors.As(err, &notFoundErr):
		statusCode = 404
	case errors.As(err, &validationErr):
		statusCode = 422
	case errors.As(err, &missingErr):
		statusCode = 422
	case errors.As(err, &httpErr):
		statusCode = httpErr.StatusCode
	}

	if statusCode >= 500 {
		app.log.ErrorContext(ctx, "request failed", slog.String("error", err.Error()))
	}

	resp, respErr := wire.NewResponse(
		statusCode,
		wire.WithHeader("Content-Type", "application/json"),
		wire.WithBody(wire.NewBody(map[string]any{"detail": err.Error()})),
	)
	if respErr != nil {
		resp, _ = wire.NewResponse(
			500,
			wire.WithHeader("Content-Type", "application/json"),
			wire.WithBody(wire.NewBody(map[string]any{"detail": err.Error()})),
		)
	}
	return resp
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

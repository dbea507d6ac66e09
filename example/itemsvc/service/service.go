// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package service wires the item endpoints into a runnable app.
package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/wirebind/wirebind"
	"github.com/wirebind/wirebind/app"
	"github.com/wirebind/wirebind/rest"
	"github.com/wirebind/wirebind/rest/endpoint"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Config is the full config schema for the item service.
type Config struct {
	Logging struct {
		Level slog.Level `config:"level"`
	} `config:"logging"`

	Http struct {
		Addr string `config:"addr"`
	} `config:"http"`

	OTel struct {
		ServiceName string `config:"serviceName"`
	} `config:"otel"`
}

// InitializeOTel implements the [appbuilder.OTelInitializer] interface.
func (cfg Config) InitializeOTel(ctx context.Context) error {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.OTel.ServiceName),
		),
	)
	if err != nil {
		return err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return nil
}

// Init builds the item service app from its config.
func Init(ctx context.Context, cfg Config) (wirebind.App, error) {
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     cfg.Logging.Level,
		AddSource: true,
	})

	store := newStore(logHandler)

	registry := prometheus.NewRegistry()

	restApp := rest.NewApp(
		rest.Addr(cfg.Http.Addr),
		rest.LogHandler(logHandler),
		rest.Title("Item Service"),
		rest.Version("0.1.0"),
		rest.OpenApiEndpoint("/openapi.json"),
		rest.Metrics(registry),
		rest.MetricsEndpoint("/metrics", registry),
		rest.Register(endpoint.Get[ListItemsRequest, ItemList](
			"/item",
			listItemsHandler{store: store},
		)),
		rest.Register(endpoint.Post[CreateItemRequest, Item](
			"/item",
			createItemHandler{store: store},
			endpoint.StatusCode(201),
		)),
		rest.Register(endpoint.Get[GetItemRequest, Item](
			"/item/{id}",
			getItemHandler{store: store},
		)),
		rest.Register(endpoint.Delete[DeleteItemRequest, endpoint.Empty](
			"/item/{id}",
			deleteItemHandler{store: store},
			endpoint.StatusCode(204),
		)),
		rest.Register(endpoint.Get[WhoAmIRequest, WhoAmIResponse](
			"/whoami",
			whoAmIHandler{},
		)),
	)

	return app.WithSignalNotifications(
		app.Recover(restApp),
		os.Interrupt,
		os.Kill,
	), nil
}

// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"context"
	"strconv"

	"github.com/wirebind/wirebind/rest/endpoint"
	"github.com/wirebind/wirebind/wire"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics enables request instrumentation, registering a request
// counter and duration histogram with the given registerer.
func Metrics(r prometheus.Registerer) Option {
	return func(a *App) {
		a.metrics = newMetrics(r)
	}
}

// MetricsEndpoint serves the given gatherer's metrics in the
// Prometheus text exposition format from the given route template.
// The metrics endpoint is not added to the OpenAPI spec.
func MetricsEndpoint(template string, g prometheus.Gatherer) Option {
	return func(a *App) {
		a.metricsTemplate = template
		a.gatherer = g
	}
}

type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(r prometheus.Registerer) *metrics {
	factory := promauto.With(r)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wirebind",
			Name:      "requests_total",
			Help:      "Total number of requests served, by method and status code",
		}, []string{"method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wirebind",
			Name:      "request_duration_seconds",
			Help:      "Request handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (m *metrics) record(method string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(seconds)
}

type metricsHandler struct {
	gatherer prometheus.Gatherer
}

func (h metricsHandler) Handle(ctx context.Context, _ endpoint.Empty) (*wire.Response, error) {
	families, err := h.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, format)
	for _, mf := range families {
		err = enc.Encode(mf)
		if err != nil {
			return nil, err
		}
	}

	return wire.NewResponse(
		200,
		wire.WithHeader("Content-Type", string(format)),
		wire.WithBody(wire.NewBody(buf.String())),
	)
}

func metricsOperation(template string, g prometheus.Gatherer) Operation {
	return endpoint.Get[endpoint.Empty, *wire.Response](template, metricsHandler{gatherer: g})
}

// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"

	"github.com/wirebind/wirebind/rest/endpoint"
	"github.com/wirebind/wirebind/wire"

	"github.com/swaggest/openapi-go/openapi3"
)

type openApiHandler struct {
	spec *openapi3.Spec
}

func (h openApiHandler) Handle(ctx context.Context, _ endpoint.Empty) (*wire.Response, error) {
	b, err := json.Marshal(h.spec)
	if err != nil {
		return nil, err
	}

	return wire.NewResponse(
		200,
		wire.WithHeader("Content-Type", "application/json"),
		wire.WithBody(wire.NewBody(string(b))),
	)
}

func openApiOperation(template string, spec *openapi3.Spec) Operation {
	return endpoint.Get[endpoint.Empty, *wire.Response](template, openApiHandler{spec: spec})
}

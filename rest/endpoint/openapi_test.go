// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"testing"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/stretchr/testify/assert"
)

func TestDescriptor_OpenApi(t *testing.T) {
	t.Run("will document all declared parameters", func(t *testing.T) {
		t.Run("if the handler declares multiple sources", func(t *testing.T) {
			type req struct {
				UserID  int    `path:"user_id"`
				Limit   int    `query:"limit" default:"10"`
				Auth    string `header:"Authorization"`
				Session string `cookie:"session"`
			}

			op := Get("/user/{user_id}", HandlerFunc[req, Empty](func(_ context.Context, _ req) (Empty, error) {
				return Empty{}, nil
			}))

			spec := op.OpenApi()
			if !assert.Len(t, spec.Parameters, 4) {
				return
			}

			byName := make(map[string]*openapi3.Parameter)
			for _, p := range spec.Parameters {
				byName[p.Parameter.Name] = p.Parameter
			}

			userID, ok := byName["user_id"]
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, openapi3.ParameterInPath, userID.In) {
				return
			}
			if !assert.True(t, *userID.Required) {
				return
			}
			if !assert.Equal(t, openapi3.SchemaTypeInteger, *userID.Schema.Schema.Type) {
				return
			}

			limit, ok := byName["limit"]
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, openapi3.ParameterInQuery, limit.In) {
				return
			}
			// a default makes the parameter optional
			if !assert.False(t, *limit.Required) {
				return
			}

			auth, ok := byName["Authorization"]
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, openapi3.ParameterInHeader, auth.In) {
				return
			}

			session, ok := byName["session"]
			if !assert.True(t, ok) {
				return
			}
			if !assert.Equal(t, openapi3.ParameterInCookie, session.In) {
				return
			}
		})
	})

	t.Run("will document the request body", func(t *testing.T) {
		t.Run("if the handler declares a structured field", func(t *testing.T) {
			type item struct {
				Name string `json:"name"`
			}
			type req struct {
				Item item
			}

			op := Post("/item", HandlerFunc[req, Empty](func(_ context.Context, _ req) (Empty, error) {
				return Empty{}, nil
			}))

			spec := op.OpenApi()
			if !assert.NotNil(t, spec.RequestBody) {
				return
			}
			if !assert.Contains(t, spec.RequestBody.RequestBody.Content, "application/json") {
				return
			}
		})
	})

	t.Run("will key the default response by status code", func(t *testing.T) {
		t.Run("if the StatusCode option is used", func(t *testing.T) {
			op := Post("/item", noopHandler{}, StatusCode(201))

			spec := op.OpenApi()
			if !assert.Contains(t, spec.Responses.MapOfResponseOrRefValues, "201") {
				return
			}
		})
	})
}

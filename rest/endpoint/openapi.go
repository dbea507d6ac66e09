// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"reflect"
	"strconv"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// OpenApi renders the descriptor as an OpenAPI v3 operation: one
// parameter per declared path, query, header and cookie parameter, a
// JSON request body schema reflected from the body type and a default
// response schema reflected from the return type.
func (d *Descriptor) OpenApi() openapi3.Operation {
	var op openapi3.Operation

	addParameters(&op, openapi3.ParameterInPath, d.pathParams)
	addParameters(&op, openapi3.ParameterInQuery, d.queryParams)
	addParameters(&op, openapi3.ParameterInHeader, d.headerParams)
	addParameters(&op, openapi3.ParameterInCookie, d.cookieParams)

	if d.body != nil {
		schema, err := reflectSchema(d.body.typ)
		if err == nil {
			op.RequestBody = &openapi3.RequestBodyOrRef{
				RequestBody: &openapi3.RequestBody{
					Content: map[string]openapi3.MediaType{
						"application/json": {Schema: schema},
					},
				},
			}
		}
	}

	op.Responses = defaultResponses(d.statusCode, d.returnType)
	return op
}

func addParameters(op *openapi3.Operation, in openapi3.ParameterIn, params []*param) {
	for _, p := range params {
		required := in == openapi3.ParameterInPath || !p.hasDefault

		op.Parameters = append(op.Parameters, openapi3.ParameterOrRef{
			Parameter: &openapi3.Parameter{
				Name:     p.name,
				In:       in,
				Required: ptrOf(required),
				Schema: &openapi3.SchemaOrRef{
					Schema: scalarSchema(p.typ),
				},
			},
		})
	}
}

func scalarSchema(t reflect.Type) *openapi3.Schema {
	var st openapi3.SchemaType
	switch t.Kind() {
	case reflect.Bool:
		st = openapi3.SchemaTypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		st = openapi3.SchemaTypeInteger
	case reflect.Float32, reflect.Float64:
		st = openapi3.SchemaTypeNumber
	default:
		st = openapi3.SchemaTypeString
	}
	return &openapi3.Schema{Type: &st}
}

func reflectSchema(t reflect.Type) (*openapi3.SchemaOrRef, error) {
	var reflector jsonschema.Reflector
	jsonSchema, err := reflector.Reflect(reflect.New(t).Elem().Interface())
	if err != nil {
		return nil, err
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(jsonSchema.ToSchemaOrBool())
	return &schemaOrRef, nil
}

func defaultResponses(statusCode int, returnType reflect.Type) openapi3.Responses {
	resp := openapi3.Response{
		Description: "Default response",
	}

	if returnType != nil {
		schema, err := reflectSchema(returnType)
		if err == nil {
			resp.Content = map[string]openapi3.MediaType{
				"application/json": {Schema: schema},
			}
		}
	}

	return openapi3.Responses{
		MapOfResponseOrRefValues: map[string]openapi3.ResponseOrRef{
			strconv.Itoa(statusCode): {Response: &resp},
		},
	}
}

func ptrOf[T any](v T) *T {
	return &v
}

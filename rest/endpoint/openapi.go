// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"net/http"
	"strconv"

	"github.com/postman-open-technologies/httpbin/internal/ptr"

	"github.com/swaggest/openapi-go/openapi3"
)

// OpenApiV3Schemaer is implemented by response types which can
// describe their body.
type OpenApiV3Schemaer interface {
	OpenApiV3Schema() (*openapi3.Schema, error)
}

func buildOperation[Resp any](o *options) openapi3.Operation {
	var op openapi3.Operation
	if o.summary != "" {
		op.Summary = ptr.Ref(o.summary)
	}
	op.Tags = o.tags

	// path parameters are always required in OpenAPI
	for _, p := range o.pathParams {
		op.Parameters = append(op.Parameters, parameter(p.Name, openapi3.ParameterInPath, p.Description, p.Pattern, true))
	}
	for _, h := range o.headers {
		op.Parameters = append(op.Parameters, parameter(h.Name, openapi3.ParameterInHeader, h.Description, h.Pattern, h.Required))
	}
	for _, qp := range o.queryParams {
		op.Parameters = append(op.Parameters, parameter(qp.Name, openapi3.ParameterInQuery, qp.Description, qp.Pattern, qp.Required))
	}

	op.Responses.MapOfResponseOrRefValues = make(map[string]openapi3.ResponseOrRef, 1+len(o.returns))
	op.Responses.MapOfResponseOrRefValues[strconv.Itoa(o.statusCode)] = openapi3.ResponseOrRef{
		Response: successResponse[Resp](o),
	}
	for _, status := range o.returns {
		key := strconv.Itoa(status)
		if _, exists := op.Responses.MapOfResponseOrRefValues[key]; exists {
			continue
		}
		op.Responses.MapOfResponseOrRefValues[key] = openapi3.ResponseOrRef{
			Response: &openapi3.Response{
				Description: http.StatusText(status),
			},
		}
	}
	return op
}

func parameter(name string, in openapi3.ParameterIn, description, pattern string, required bool) openapi3.ParameterOrRef {
	p := &openapi3.Parameter{
		Name:     name,
		In:       in,
		Required: ptr.Ref(required),
	}
	if description != "" {
		p.Description = ptr.Ref(description)
	}
	if pattern != "" {
		p.Schema = &openapi3.SchemaOrRef{
			Schema: &openapi3.Schema{
				Type:    ptr.Ref(openapi3.SchemaTypeString),
				Pattern: ptr.Ref(pattern),
			},
		}
	}
	return openapi3.ParameterOrRef{Parameter: p}
}

func successResponse[Resp any](o *options) *openapi3.Response {
	resp := &openapi3.Response{
		Description: http.StatusText(o.statusCode),
	}

	var r Resp
	contentTypes := o.produces
	if ct, ok := any(&r).(ContentTyper); ok && ct.ContentType() != "" {
		contentTypes = append([]string{ct.ContentType()}, contentTypes...)
	}
	if len(contentTypes) == 0 {
		return resp
	}

	var schemaOrRef *openapi3.SchemaOrRef
	if schemaer, ok := any(&r).(OpenApiV3Schemaer); ok {
		schema, err := schemaer.OpenApiV3Schema()
		if err == nil && schema != nil {
			schemaOrRef = &openapi3.SchemaOrRef{Schema: schema}
		}
	}

	resp.Content = make(map[string]openapi3.MediaType, len(contentTypes))
	for _, ct := range contentTypes {
		resp.Content[ct] = openapi3.MediaType{Schema: schemaOrRef}
	}
	return resp
}

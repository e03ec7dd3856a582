// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/telekom/hoptrace/pkg"
	"github.com/telekom/hoptrace/pkg/api"
)

// Schema returns an openapi3.SchemaRef of a single target result
func (m *Monitor) Schema() (*openapi3.SchemaRef, error) {
	schema, err := openapi3gen.NewSchemaRefForValue(Result{}, openapi3.Schemas{})
	if err != nil {
		return nil, api.ErrCreateOpenapiSchema{Name: Name, Err: err}
	}
	return schema, nil
}

// OpenAPI returns the document describing the monitor endpoints.
func (m *Monitor) OpenAPI() (*openapi3.T, error) {
	result, err := m.Schema()
	if err != nil {
		return nil, err
	}
	all := &openapi3.SchemaRef{Value: openapi3.NewObjectSchema().WithAdditionalProperties(result.Value)}

	version := pkg.Version
	if version == "" {
		version = "dev"
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "hoptrace",
			Description: "Latest discovered routes of all monitored targets",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
	}

	doc.Paths.Set(routesPath, &openapi3.PathItem{
		Get: &openapi3.Operation{
			Summary:     "Latest routes of all targets",
			OperationID: "listRoutes",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
					Value: openapi3.NewResponse().WithDescription("Routes by target").WithJSONSchemaRef(all),
				}),
			),
		},
	})
	doc.Paths.Set(routesPath+"/{target}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Summary:     "Latest route of one target",
			OperationID: "getRoute",
			Parameters: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("target").WithSchema(openapi3.NewStringSchema())},
			},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
					Value: openapi3.NewResponse().WithDescription("Route of the target").WithJSONSchemaRef(result),
				}),
				openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{
					Value: openapi3.NewResponse().WithDescription("Target not monitored or not yet discovered"),
				}),
			),
		},
	})
	return doc, nil
}

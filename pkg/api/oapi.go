// deploywatch
// (C) 2026, the deploywatch authors
//
// The deploywatch authors and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package api

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/deploywatch/deploywatch/pkg/monitor"
	"github.com/deploywatch/deploywatch/pkg/report"
)

var oapiBoilerplate = openapi3.T{
	OpenAPI: "3.0.0",
	Info: &openapi3.Info{
		Title:       "Deploywatch Status API",
		Description: "Serves the state and report of a deployment monitoring run",
	},
	Paths:      make(openapi3.Paths),
	Extensions: make(map[string]any),
	Components: &openapi3.Components{
		Schemas: make(openapi3.Schemas),
	},
	Servers: openapi3.Servers{},
}

// GenerateSpec generates the OpenAPI specification for the status routes
func GenerateSpec() (openapi3.T, error) {
	doc := oapiBoilerplate

	runRef, err := openapi3gen.NewSchemaRefForValue(monitor.Run{}, openapi3.Schemas{})
	if err != nil {
		return openapi3.T{}, ErrCreateOpenapiSchema{name: "run", err: err}
	}
	reportRef, err := openapi3gen.NewSchemaRefForValue(report.Report{}, openapi3.Schemas{})
	if err != nil {
		return openapi3.T{}, ErrCreateOpenapiSchema{name: "report", err: err}
	}

	for path, route := range map[string]struct {
		desc string
		ref  *openapi3.SchemaRef
	}{
		"/v1/run":    {desc: "Returns the current monitoring run with all probe results", ref: runRef},
		"/v1/report": {desc: "Returns the deployment report for the current run", ref: reportRef},
	} {
		bodyDesc := route.desc
		doc.Paths[path] = &openapi3.PathItem{
			Get: &openapi3.Operation{
				Description: route.desc,
				Tags:        []string{"Status"},
				Responses: openapi3.Responses{
					fmt.Sprint(http.StatusOK): &openapi3.ResponseRef{
						Value: &openapi3.Response{
							Description: &bodyDesc,
							Content:     openapi3.NewContentWithSchemaRef(route.ref, []string{"application/json"}),
						},
					},
				},
			},
		}
	}

	return doc, nil
}

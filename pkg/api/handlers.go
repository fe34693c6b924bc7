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
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/deploywatch/deploywatch/internal/logger"
	"github.com/deploywatch/deploywatch/pkg/metrics"
	"github.com/deploywatch/deploywatch/pkg/monitor"
	"github.com/deploywatch/deploywatch/pkg/report"
)

// Routes builds the status routes for an ongoing monitoring run
func Routes(mon *monitor.Monitor, m metrics.Metrics) []Route {
	return []Route{
		{
			Path:    "/v1/run",
			Method:  http.MethodGet,
			Handler: handleRun(mon),
		},
		{
			Path:    "/v1/report",
			Method:  http.MethodGet,
			Handler: handleReport(mon),
		},
		{
			Path:   "/metrics",
			Method: "Handle",
			Handler: promhttp.HandlerFor(m.GetRegistry(),
				promhttp.HandlerOpts{Registry: m.GetRegistry()}).ServeHTTP,
		},
		{
			Path:    "/openapi.yaml",
			Method:  http.MethodGet,
			Handler: handleOpenapi,
		},
	}
}

// handleRun serves the current run including all probe results
func handleRun(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, mon.Snapshot())
	}
}

// handleReport serves the report derived from the run so far
func handleReport(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, report.Generate(mon.Snapshot()))
	}
}

func handleOpenapi(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	doc, err := GenerateSpec()
	if err != nil {
		log.Error("Failed to create openapi spec", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mime := r.Header.Get("Accept")
	w.Header().Set("Content-Type", "text/yaml")
	if mime == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			log.Error("Failed to encode openapi spec", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	if err := yaml.NewEncoder(w).Encode(doc); err != nil {
		log.Error("Failed to encode openapi spec", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	log := logger.FromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Could not write response", "error", err)
	}
}

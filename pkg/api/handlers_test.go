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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploywatch/deploywatch/pkg/metrics"
	"github.com/deploywatch/deploywatch/pkg/monitor"
	"github.com/deploywatch/deploywatch/pkg/probe"
	"github.com/deploywatch/deploywatch/pkg/report"
)

func newTestAPI(t *testing.T) *api {
	t.Helper()

	p := probe.New(probe.Config{
		BaseURL: "https://ads.test.com",
		Timeout: probe.DefaultTimeout,
		Endpoints: []probe.Endpoint{
			{Name: "root", Path: "/", Required: true},
		},
	})
	mon := monitor.New(monitor.NewConfig(), p)
	m := metrics.New()

	a := &api{
		server: &http.Server{}, //nolint:gosec
		router: chi.NewRouter(),
	}
	require.NoError(t, a.RegisterRoutes(context.Background(), Routes(mon, m)...))
	return a
}

func TestRoutes_Run(t *testing.T) {
	a := newTestAPI(t)

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/run", http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var run monitor.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	assert.Equal(t, monitor.StatusPending, run.Status)
	assert.Empty(t, run.Cycles)
}

func TestRoutes_Report(t *testing.T) {
	a := newTestAPI(t)

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/report", http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, "in_progress", rep.DeploymentStatus)
	assert.Zero(t, rep.TotalChecks)
}

func TestRoutes_Metrics(t *testing.T) {
	a := newTestAPI(t)

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestRoutes_Openapi(t *testing.T) {
	a := newTestAPI(t)

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "/v1/run")
	assert.Contains(t, rr.Body.String(), "/v1/report")
}

func TestRoutes_OpenapiJSON(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rr.Body.String()), "{"))
}

func TestGenerateSpec(t *testing.T) {
	doc, err := GenerateSpec()
	require.NoError(t, err)

	for _, path := range []string{"/v1/run", "/v1/report"} {
		item, ok := doc.Paths[path]
		require.True(t, ok, "missing path %s", path)
		assert.NotNil(t, item.Get)
	}
}

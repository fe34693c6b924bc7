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

package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploywatch/deploywatch/pkg/probe"
)

// testConfig returns a monitor config with intervals short enough
// for tests to run without real deployment-window delays
func testConfig() Config {
	cfg := NewConfig()
	cfg.Interval = 20 * time.Millisecond
	cfg.Window = 110 * time.Millisecond
	cfg.LatencyLimit = 30 * time.Second
	return cfg
}

func newTestProber(baseURL string, endpoints ...probe.Endpoint) *probe.Prober {
	return probe.New(probe.Config{
		BaseURL:   baseURL,
		Timeout:   time.Second,
		Endpoints: endpoints,
	})
}

func TestMonitor_Run_Successful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(testConfig(), newTestProber(srv.URL,
		probe.Endpoint{Name: "root", Path: "/"},
		probe.Endpoint{Name: "accounts", Path: "/list-accounts"},
	))

	run, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccessful, run.Status)
	assert.Empty(t, run.Reason)
	assert.False(t, run.End.IsZero(), "End not set on terminal run")
	assert.GreaterOrEqual(t, len(run.Cycles), 2, "expected multiple cycles within the window")
	assert.Equal(t, run.TotalChecks(), run.HealthyChecks())
}

func TestMonitor_Run_FailureRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := New(testConfig(), newTestProber(srv.URL,
		probe.Endpoint{Name: "root", Path: "/"},
	))

	run, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Contains(t, run.Reason, "failure rate")
	assert.Len(t, run.Cycles, 1, "run should fail after the first cycle")
}

func TestMonitor_Run_LatencyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Window = time.Second
	cfg.LatencyLimit = 5 * time.Millisecond

	m := New(cfg, newTestProber(srv.URL, probe.Endpoint{Name: "root", Path: "/"}))

	run, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Contains(t, run.Reason, "latency")
}

func TestMonitor_Run_RequiredUnreachable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/list-accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// six endpoints keep a single failure below the 20% failure rate,
	// so only the consecutive-cycles trigger can end the run
	endpoints := []probe.Endpoint{
		{Name: "accounts", Path: "/list-accounts", Required: true},
	}
	for i := 0; i < 5; i++ {
		endpoints = append(endpoints, probe.Endpoint{Name: fmt.Sprintf("aux-%d", i), Path: "/"})
	}

	cfg := testConfig()
	cfg.Window = time.Second

	m := New(cfg, newTestProber(srv.URL, endpoints...))
	run, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Contains(t, run.Reason, `required endpoint "accounts" unreachable`)
	assert.Len(t, run.Cycles, 2)
}

func TestMonitor_Run_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Window = 10 * time.Second

	m := New(cfg, newTestProber(srv.URL, probe.Endpoint{Name: "root", Path: "/"}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	run, err := m.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, StatusStopped, run.Status)
	assert.NotEmpty(t, run.Cycles, "partial results were discarded")
	assert.False(t, run.End.IsZero())
}

func TestMonitor_Shutdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Window = 10 * time.Second

	m := New(cfg, newTestProber(srv.URL, probe.Endpoint{Name: "root", Path: "/"}))

	go func() {
		time.Sleep(50 * time.Millisecond)
		m.Shutdown()
	}()

	run, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, run.Status)

	// repeated shutdown must not panic
	m.Shutdown()
}

func TestMonitor_Run_InvalidConfig(t *testing.T) {
	m := New(Config{}, newTestProber("https://ads.test.com", probe.Endpoint{Name: "root", Path: "/"}))

	_, err := m.Run(context.Background())
	assert.Error(t, err)
}

func TestMonitor_Snapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(testConfig(), newTestProber(srv.URL, probe.Endpoint{Name: "root", Path: "/"}))

	before := m.Snapshot()
	assert.Equal(t, StatusPending, before.Status)

	run, err := m.Run(context.Background())
	require.NoError(t, err)

	snap := m.Snapshot()
	assert.Equal(t, run.Status, snap.Status)
	assert.Equal(t, run.TotalChecks(), snap.TotalChecks())

	// mutating the snapshot must not leak into the monitor
	if len(snap.Cycles) > 0 {
		snap.Cycles[0].Results = nil
		assert.NotEqual(t, len(m.Snapshot().Cycles[0].Results), 0)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "default config",
			config:  NewConfig(),
			wantErr: false,
		},
		{
			name:    "zero config",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "interval below minimum",
			config: Config{
				Interval:         time.Millisecond,
				Window:           time.Second,
				ConsecutiveLimit: 2,
			},
			wantErr: true,
		},
		{
			name: "window shorter than interval",
			config: Config{
				Interval:         time.Second,
				Window:           500 * time.Millisecond,
				ConsecutiveLimit: 2,
			},
			wantErr: true,
		},
		{
			name: "failure rate out of range",
			config: Config{
				Interval:         time.Second,
				Window:           time.Minute,
				FailureRate:      1.5,
				ConsecutiveLimit: 2,
			},
			wantErr: true,
		},
		{
			name: "consecutive limit below one",
			config: Config{
				Interval: time.Second,
				Window:   time.Minute,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

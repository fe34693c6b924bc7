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

// Package api serves the status of an ongoing monitoring run over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deploywatch/deploywatch/internal/logger"
)

type API interface {
	Run(ctx context.Context) error
	Shutdown(ctx context.Context) error
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server *http.Server
	router chi.Router
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// New creates a new api listening on address
func New(address string) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{Addr: address, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
		router: r,
	}
}

// Run serves the status api
// Blocks until context is done
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	cErr := make(chan error, 1)

	if len(a.router.Routes()) == 0 {
		return fmt.Errorf("failed serving API: no routes initialized")
	}

	go func(cErr chan error) {
		defer close(cErr)
		log.Info("Serving Api", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil {
			cErr <- err
		}
	}(cErr)

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed serving API: %w", ctx.Err())
	case err := <-cErr:
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			log.Info("Api server closed")
			return nil
		}
		log.Error("Failed serving API", "error", err)
		return fmt.Errorf("failed serving API: %w", err)
	}
}

// Shutdown gracefully shuts down the api server
// Returns an error if an error is present in the context
// or if the server cannot be shut down
func (a *api) Shutdown(ctx context.Context) error {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Failed to shutdown api server", "error", err)
		return fmt.Errorf("failed shutting down API: %w", errors.Join(errC, err))
	}
	return errC
}

type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// RegisterRoutes sets up all endpoint handlers for the given routes
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(logger.Middleware(ctx))
	for _, route := range routes {
		switch route.Method {
		case http.MethodGet:
			a.router.Get(route.Path, route.Handler)
		case http.MethodPost:
			a.router.Post(route.Path, route.Handler)
		case "Handle":
			a.router.Handle(route.Path, route.Handler)
		case "HandleFunc":
			a.router.HandleFunc(route.Path, route.Handler)
		default:
			return fmt.Errorf("unsupported method for %s: %s", route.Path, route.Method)
		}
	}

	a.router.Get("/healthz", okHandler(ctx))

	return nil
}

// okHandler returns a handler that will serve status ok
func okHandler(ctx context.Context) http.HandlerFunc {
	log := logger.FromContext(ctx)

	return func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Error("Could not write response", "error", err.Error())
		}
	}
}

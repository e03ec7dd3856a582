// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/pkg/api"
)

const (
	routesPath  = "/v1/routes"
	openapiPath = "/openapi"
	metricsPath = "/metrics"
)

// Routes returns the HTTP endpoints serving the monitor results, its
// OpenAPI document and the metrics of the given gatherer.
func (m *Monitor) Routes(gatherer prometheus.Gatherer) []api.Route {
	return []api.Route{
		{Path: routesPath, Method: http.MethodGet, Handler: m.handleRoutes},
		{Path: routesPath + "/{target}", Method: http.MethodGet, Handler: m.handleRoute},
		{Path: openapiPath, Method: http.MethodGet, Handler: m.handleOpenAPI},
		{Path: metricsPath, Method: http.MethodGet, Handler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP},
	}
}

func (m *Monitor) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, m.Results())
}

func (m *Monitor) handleRoute(w http.ResponseWriter, r *http.Request) {
	target, err := url.PathUnescape(chi.URLParam(r, "target"))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid target"})
		return
	}
	res, ok := m.Result(target)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "no route discovered for target " + target})
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (m *Monitor) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := m.OpenAPI()
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to create OpenAPI document", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "failed to create OpenAPI document"})
		return
	}
	writeJSON(w, r, http.StatusOK, doc)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write response", "error", err)
	}
}

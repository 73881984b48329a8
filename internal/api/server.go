// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api implements the HTTP surface: a health probe, the stats range
// query, and the Prometheus exposition endpoint.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"txnstats/internal/stats"
	"txnstats/internal/txkeys"
)

// Queryer answers stats range queries.
type Queryer interface {
	GetRange(ctx context.Context, from, to time.Time) (map[string]stats.DayStats, error)
}

// Server handles the HTTP requests for the stats service.
type Server struct {
	query Queryer
	log   *logrus.Entry
}

// NewServer creates a server around a query service.
func NewServer(query Queryer, log *logrus.Logger) *Server {
	return &Server{
		query: query,
		log:   log.WithField("component", "api"),
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStats serves GET /stats?from_date=YYYY-MM-DD&to_date=YYYY-MM-DD.
// Bad input is a 400; absent days are omitted from the response, never 404.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from_date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseDateParam(r, "to_date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if from.After(to) {
		http.Error(w, "from_date must be <= to_date", http.StatusBadRequest)
		return
	}

	data, err := s.query.GetRange(r.Context(), from, to)
	if err != nil {
		s.log.WithError(err).Error("Stats query failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, &paramError{name + " is required"}
	}
	t, err := time.Parse(txkeys.DayLayout, raw)
	if err != nil {
		return time.Time{}, &paramError{name + " must be YYYY-MM-DD"}
	}
	return t, nil
}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

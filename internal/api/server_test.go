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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"txnstats/internal/stats"
)

type fakeQueryer struct {
	data map[string]stats.DayStats
	err  error
	from time.Time
	to   time.Time
}

func (f *fakeQueryer) GetRange(ctx context.Context, from, to time.Time) (map[string]stats.DayStats, error) {
	f.from, f.to = from, to
	return f.data, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func doGet(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(&fakeQueryer{}, quietLogger())
	rec := doGet(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatsHappyPath(t *testing.T) {
	q := &fakeQueryer{data: map[string]stats.DayStats{
		"2026-01-01": {
			Deposits:    map[string]float64{"card": 15.55},
			Withdrawals: map[string]float64{},
		},
	}}
	s := NewServer(q, quietLogger())

	rec := doGet(t, s, "/stats?from_date=2026-01-01&to_date=2026-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]stats.DayStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, q.data, body.Data)
	require.Equal(t, "2026-01-01", q.from.Format("2006-01-02"))
	require.Equal(t, "2026-01-01", q.to.Format("2006-01-02"))
}

func TestStatsEmptySectionSerializesAsObject(t *testing.T) {
	q := &fakeQueryer{data: map[string]stats.DayStats{
		"2026-01-01": {
			Deposits:    map[string]float64{"card": 15.55},
			Withdrawals: map[string]float64{},
		},
	}}
	s := NewServer(q, quietLogger())

	rec := doGet(t, s, "/stats?from_date=2026-01-01&to_date=2026-01-01")
	require.Contains(t, rec.Body.String(), `"withdrawals":{}`)
}

func TestStatsInvertedRangeIs400(t *testing.T) {
	s := NewServer(&fakeQueryer{}, quietLogger())
	rec := doGet(t, s, "/stats?from_date=2026-01-02&to_date=2026-01-01")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "from_date must be <= to_date", strings.TrimSpace(rec.Body.String()))
}

func TestStatsMissingParamsAre400(t *testing.T) {
	s := NewServer(&fakeQueryer{}, quietLogger())

	rec := doGet(t, s, "/stats?to_date=2026-01-01")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "from_date")

	rec = doGet(t, s, "/stats?from_date=2026-01-01")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "to_date")
}

func TestStatsMalformedDateIs400(t *testing.T) {
	s := NewServer(&fakeQueryer{}, quietLogger())
	rec := doGet(t, s, "/stats?from_date=01-01-2026&to_date=2026-01-01")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsServiceErrorIs500(t *testing.T) {
	s := NewServer(&fakeQueryer{err: errors.New("redis down")}, quietLogger())
	rec := doGet(t, s, "/stats?from_date=2026-01-01&to_date=2026-01-01")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "redis")
}

func TestMetricsEndpointIsWired(t *testing.T) {
	s := NewServer(&fakeQueryer{}, quietLogger())
	rec := doGet(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
}

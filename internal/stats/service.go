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

// Package stats serves range queries over the per-day aggregates. A range
// is split at the hot boundary (virtual_today minus hot_days): recent days
// are read from the hot store in one pipelined batch, older days from the
// cold store in one $in query, and the two sides are merged. The boundary
// is computed from the current virtual clock per request, so the same day
// may be served by different tiers across requests.
package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"txnstats/internal/coldstore"
	"txnstats/internal/txkeys"
)

// Store is the slice of the hot store the query service needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	FetchHashes(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Archive is the slice of the cold store the query service needs.
type Archive interface {
	FindDays(ctx context.Context, days []string) ([]coldstore.DayDoc, error)
}

// DayStats is one day's totals as returned to API clients. Absent methods
// are omitted; absent sections serialize as {}.
type DayStats struct {
	Deposits    map[string]float64 `json:"deposits"`
	Withdrawals map[string]float64 `json:"withdrawals"`
}

// Service answers range queries across both tiers.
type Service struct {
	hot     Store
	cold    Archive
	hotDays int
	log     *logrus.Entry

	// now is the wall-clock fallback for an unset virtual clock.
	now func() time.Time
}

// New builds a query service. hotDays <= 0 selects the default of 7.
func New(hot Store, cold Archive, hotDays int, log *logrus.Logger) *Service {
	if hotDays <= 0 {
		hotDays = 7
	}
	return &Service{
		hot:     hot,
		cold:    cold,
		hotDays: hotDays,
		log:     log.WithField("component", "stats"),
		now:     time.Now,
	}
}

// GetRange returns every day in [from, to] that has data in either tier.
// Days without data are omitted, not zero-filled. The caller validates
// from <= to.
func (s *Service) GetRange(ctx context.Context, from, to time.Time) (map[string]DayStats, error) {
	days := dateRange(from, to)

	boundary, virtualToday, err := s.hotBoundary(ctx)
	if err != nil {
		return nil, err
	}

	var hotDays, coldDays []time.Time
	for _, d := range days {
		if !d.Before(boundary) {
			hotDays = append(hotDays, d)
		} else {
			coldDays = append(coldDays, d)
		}
	}

	s.log.WithFields(logrus.Fields{
		"from":          txkeys.Day(from),
		"to":            txkeys.Day(to),
		"virtual_today": txkeys.Day(virtualToday),
		"hot_boundary":  txkeys.Day(boundary),
		"hot_days":      len(hotDays),
		"cold_days":     len(coldDays),
	}).Info("Stats query")

	result := make(map[string]DayStats)

	if len(coldDays) > 0 {
		coldData, err := s.readCold(ctx, coldDays)
		if err != nil {
			return nil, err
		}
		for day, st := range coldData {
			result[day] = st
		}
	}

	if len(hotDays) > 0 {
		hotData, err := s.readHot(ctx, hotDays)
		if err != nil {
			return nil, err
		}
		// Hot wins on overlap; overlaps only occur transiently mid-archive.
		for day, st := range hotData {
			result[day] = st
		}
	}

	s.log.WithField("total_returned_days", len(result)).Info("Stats query finished")
	return result, nil
}

// hotBoundary derives the earliest hot-served date from the virtual clock,
// falling back to the wall clock (with a warning) when the clock is unset.
func (s *Service) hotBoundary(ctx context.Context) (boundary, virtualToday time.Time, err error) {
	raw, ok, err := s.hot.Get(ctx, txkeys.VirtualClockKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !ok {
		virtualToday = midnight(s.now())
		s.log.WithField("virtual_today", txkeys.Day(virtualToday)).
			Warn("Virtual clock not found, falling back to system date")
		return virtualToday.AddDate(0, 0, -s.hotDays), virtualToday, nil
	}
	clock, err := txkeys.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("stored virtual clock %q: %w", raw, err)
	}
	virtualToday = midnight(clock)
	return virtualToday.AddDate(0, 0, -s.hotDays), virtualToday, nil
}

// readHot fetches both type hashes per day in one pipelined batch and drops
// days with no data.
func (s *Service) readHot(ctx context.Context, days []time.Time) (map[string]DayStats, error) {
	keys := make([]string, 0, len(days)*2)
	for _, d := range days {
		day := txkeys.Day(d)
		keys = append(keys, txkeys.AggKey(day, txkeys.TypeDeposit), txkeys.AggKey(day, txkeys.TypeWithdrawal))
	}
	hashes, err := s.hot.FetchHashes(ctx, keys)
	if err != nil {
		return nil, err
	}

	result := make(map[string]DayStats)
	for i, d := range days {
		dep, wit := hashes[i*2], hashes[i*2+1]
		if len(dep) == 0 && len(wit) == 0 {
			continue
		}
		st := DayStats{
			Deposits:    make(map[string]float64, len(dep)),
			Withdrawals: make(map[string]float64, len(wit)),
		}
		if err := coerce(st.Deposits, dep); err != nil {
			return nil, fmt.Errorf("day %s: %w", txkeys.Day(d), err)
		}
		if err := coerce(st.Withdrawals, wit); err != nil {
			return nil, fmt.Errorf("day %s: %w", txkeys.Day(d), err)
		}
		result[txkeys.Day(d)] = st
	}
	return result, nil
}

// readCold fetches the archived documents for the given days in one query.
func (s *Service) readCold(ctx context.Context, days []time.Time) (map[string]DayStats, error) {
	dayStrings := make([]string, len(days))
	for i, d := range days {
		dayStrings[i] = txkeys.Day(d)
	}
	docs, err := s.cold.FindDays(ctx, dayStrings)
	if err != nil {
		return nil, err
	}
	result := make(map[string]DayStats, len(docs))
	for _, doc := range docs {
		st := DayStats{Deposits: doc.Deposits, Withdrawals: doc.Withdrawals}
		if st.Deposits == nil {
			st.Deposits = map[string]float64{}
		}
		if st.Withdrawals == nil {
			st.Withdrawals = map[string]float64{}
		}
		result[doc.Date] = st
	}
	return result, nil
}

func coerce(dst map[string]float64, src map[string]string) error {
	for method, val := range src {
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("cell %s=%q: %w", method, val, err)
		}
		dst[method] = v
	}
	return nil
}

// dateRange enumerates calendar days from from to to inclusive.
func dateRange(from, to time.Time) []time.Time {
	var days []time.Time
	for d := midnight(from); !d.After(midnight(to)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

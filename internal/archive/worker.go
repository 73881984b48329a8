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

// Package archive implements the retention worker that migrates aged days
// from the hot store to the cold store. It is single-threaded and is the
// sole writer that deletes hot aggregates. Per day the order is strict:
// the cold document is written before the hot keys are deleted, so a
// concurrent query can at worst see a day on both sides, never on neither
// for longer than one request.
package archive

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"txnstats/internal/amount"
	"txnstats/internal/coldstore"
	"txnstats/internal/txkeys"
)

// Store is the slice of the hot store the archiver needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...string) error
	FetchHashes(ctx context.Context, keys []string) ([]map[string]string, error)
	DropDay(ctx context.Context, day string, aggKeys ...string) error
}

// Archive is the slice of the cold store the archiver needs.
type Archive interface {
	Upsert(ctx context.Context, day string, incs map[string]float64) error
}

// Options tunes the retention loop.
type Options struct {
	Interval      time.Duration
	RetentionDays int
	DayPause      time.Duration
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = 10 * time.Second
	}
	if o.RetentionDays <= 0 {
		o.RetentionDays = 7
	}
	if o.DayPause <= 0 {
		o.DayPause = 10 * time.Millisecond
	}
}

// Worker periodically moves days past the retention boundary to the cold
// store.
type Worker struct {
	hot  Store
	cold Archive
	opts Options
	log  *logrus.Entry
}

// New builds an archive worker.
func New(hot Store, cold Archive, opts Options, log *logrus.Logger) *Worker {
	opts.defaults()
	return &Worker{
		hot:  hot,
		cold: cold,
		opts: opts,
		log:  log.WithField("component", "archiver"),
	}
}

// Run spins the retention loop until cancelled. A failed cycle is logged
// and swallowed so the next cycle still happens; the next cycle is the
// retry.
func (w *Worker) Run(ctx context.Context) error {
	w.log.WithFields(logrus.Fields{
		"interval":       w.opts.Interval,
		"retention_days": w.opts.RetentionDays,
	}).Info("Archive worker started")

	for {
		if err := w.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				w.log.Info("Archive worker shutting down")
				return ctx.Err()
			}
			cycleFailures.Inc()
			w.log.WithError(err).Error("Error during archive cycle")
		}

		select {
		case <-time.After(w.opts.Interval):
		case <-ctx.Done():
			w.log.Info("Archive worker shutting down")
			return ctx.Err()
		}
	}
}

// Cycle performs one archival pass. Exported so callers can drive a pass
// directly, outside the periodic loop.
func (w *Worker) Cycle(ctx context.Context) error {
	w.log.Debug("Archiver heartbeat: checking for data to archive")
	cyclesTotal.Inc()

	raw, ok, err := w.hot.Get(ctx, txkeys.VirtualClockKey)
	if err != nil {
		return err
	}
	if !ok {
		// No notion of time yet, so nothing can be aged out.
		w.log.Info("Archiver: no virtual clock found yet")
		return nil
	}
	clock, err := txkeys.ParseTimestamp(raw)
	if err != nil {
		return fmt.Errorf("stored virtual clock %q: %w", raw, err)
	}
	boundary := clock.AddDate(0, 0, -w.opts.RetentionDays)
	boundaryDay := txkeys.Day(boundary)

	tracked, err := w.hot.SMembers(ctx, txkeys.TrackedDaysKey)
	if err != nil {
		return err
	}
	if len(tracked) == 0 {
		return nil
	}
	sort.Strings(tracked)

	for _, day := range tracked {
		if _, err := time.Parse(txkeys.DayLayout, day); err != nil {
			w.log.WithField("day", day).Warn("Skipping unparseable tracked day")
			continue
		}
		// YYYY-MM-DD compares chronologically as a string.
		if day > boundaryDay {
			continue
		}
		w.log.WithField("day", day).Info("Day identified as historical, moving")
		if err := w.moveDay(ctx, day); err != nil {
			return err
		}
		// Yield between days so a large backlog does not monopolize the
		// hot store.
		select {
		case <-time.After(w.opts.DayPause):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// moveDay migrates a single day: fetch both type hashes, upsert the cold
// document with $inc, then delete the hot keys and untrack the day. The
// delete must complete before the next cycle revisits the day; re-running
// the whole procedure after a crash between upsert and delete adds the
// values twice, which is the documented tolerated window.
func (w *Worker) moveDay(ctx context.Context, day string) error {
	depositKey := txkeys.AggKey(day, txkeys.TypeDeposit)
	withdrawalKey := txkeys.AggKey(day, txkeys.TypeWithdrawal)

	hashes, err := w.hot.FetchHashes(ctx, []string{depositKey, withdrawalKey})
	if err != nil {
		return err
	}
	deposits, withdrawals := hashes[0], hashes[1]

	if len(deposits) == 0 && len(withdrawals) == 0 {
		// Tracked but empty: nothing to archive, just untrack.
		return w.hot.SRem(ctx, txkeys.TrackedDaysKey, day)
	}

	incs := make(map[string]float64, len(deposits)+len(withdrawals))
	if err := addSection(incs, txkeys.TypeDeposit, deposits); err != nil {
		return fmt.Errorf("day %s: %w", day, err)
	}
	if err := addSection(incs, txkeys.TypeWithdrawal, withdrawals); err != nil {
		return fmt.Errorf("day %s: %w", day, err)
	}

	if err := w.cold.Upsert(ctx, day, incs); err != nil {
		return err
	}
	w.log.WithField("day", day).Info("Archived day to cold store")

	if err := w.hot.DropDay(ctx, day, depositKey, withdrawalKey); err != nil {
		return err
	}
	daysArchived.Inc()
	return nil
}

func addSection(incs map[string]float64, txType string, fields map[string]string) error {
	for method, val := range fields {
		v, err := amount.Parse(val)
		if err != nil {
			return fmt.Errorf("%s cell %s=%q: %w", txType, method, val, err)
		}
		incs[coldstore.IncField(txType, method)] = v
	}
	return nil
}

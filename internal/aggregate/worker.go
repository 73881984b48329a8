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

// Package aggregate implements the stream consumer that folds transactions
// into per-day aggregates. For every batch it pipelines the hash
// increments, the tracked-day adds, the virtual clock write, and the acks
// into one round-trip. The pipeline is batching, not a transaction: a crash
// between update and ack can replay a batch, and replayed increments can
// double-count a (day, method) cell. That window is accepted; see DESIGN.md.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"txnstats/internal/amount"
	"txnstats/internal/hotstore"
	"txnstats/internal/txkeys"
)

// Store is the slice of the hot store the aggregator needs.
type Store interface {
	EnsureGroup(ctx context.Context, stream, group string) error
	ReadGroup(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]hotstore.Message, error)
	Apply(ctx context.Context, stream, group string, b *hotstore.WriteBatch) error
	Get(ctx context.Context, key string) (string, bool, error)
}

// Options tunes the consumer loop.
type Options struct {
	ConsumerName string
	BatchSize    int64
	Block        time.Duration
}

func (o *Options) defaults() {
	if o.ConsumerName == "" {
		o.ConsumerName = "aggregator-1"
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.Block <= 0 {
		o.Block = hotstore.BlockTimeout
	}
}

// Worker consumes the transaction stream in the aggregators group.
type Worker struct {
	store Store
	opts  Options
	log   *logrus.Entry

	// localClock is owned by the consumer loop alone. The hot-store copy is
	// written through on every advance and read back only at startup.
	localClock time.Time
}

// New builds an aggregation worker.
func New(store Store, opts Options, log *logrus.Logger) *Worker {
	opts.defaults()
	return &Worker{
		store: store,
		opts:  opts,
		log:   log.WithField("component", "aggregator"),
	}
}

// Run consumes until the context is cancelled. Stream or pipeline I/O
// failures are logged and returned; parse failures are per-message and do
// not bubble.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.store.EnsureGroup(ctx, txkeys.StreamName, txkeys.GroupName); err != nil {
		return err
	}
	if err := w.seedClock(ctx); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{
		"group": txkeys.GroupName,
		"clock": w.clockString(),
	}).Info("Aggregation worker started")

	for {
		msgs, err := w.store.ReadGroup(ctx, txkeys.StreamName, txkeys.GroupName,
			w.opts.ConsumerName, w.opts.BatchSize, w.opts.Block)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				w.log.Info("Aggregation worker shut down")
				return ctx.Err()
			}
			w.log.WithError(err).Error("Aggregation worker encountered a fatal error")
			return err
		}
		if len(msgs) == 0 {
			if ctx.Err() != nil {
				w.log.Info("Aggregation worker shut down")
				return ctx.Err()
			}
			continue
		}
		if err := w.handleBatch(ctx, msgs); err != nil {
			w.log.WithError(err).Error("Aggregation worker encountered a fatal error")
			return err
		}
	}
}

// seedClock restores the local virtual clock from the hot store. Absence is
// fine: the clock is created by the first acknowledged message.
func (w *Worker) seedClock(ctx context.Context) error {
	raw, ok, err := w.store.Get(ctx, txkeys.VirtualClockKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	ts, err := txkeys.ParseTimestamp(raw)
	if err != nil {
		return fmt.Errorf("stored virtual clock %q: %w", raw, err)
	}
	w.localClock = ts
	return nil
}

// handleBatch folds one read into a single pipelined write batch.
//
// Malformed messages are acked in the same pipeline as the valid updates
// (ack-on-skip), so a poison message never redelivers forever; the
// malformed counter keeps the drops observable.
func (w *Worker) handleBatch(ctx context.Context, msgs []hotstore.Message) error {
	batch := &hotstore.WriteBatch{}
	processed := 0

	for _, msg := range msgs {
		tx, err := parseMessage(msg.Values)
		if err != nil {
			malformedTotal.Inc()
			w.log.WithError(err).WithField("message_id", msg.ID).Warn("Skipping malformed message")
			batch.Acks = append(batch.Acks, msg.ID)
			continue
		}

		batch.Incs = append(batch.Incs, hotstore.FieldInc{
			Key:   txkeys.AggKey(tx.day, tx.txType),
			Field: tx.method,
			Delta: tx.amount,
		})
		batch.Days = append(batch.Days, tx.day)

		if tx.ts.After(w.localClock) {
			w.localClock = tx.ts
			batch.Clock = txkeys.FormatTimestamp(tx.ts)
		}

		batch.Acks = append(batch.Acks, msg.ID)
		processed++
	}

	if err := w.store.Apply(ctx, txkeys.StreamName, txkeys.GroupName, batch); err != nil {
		return err
	}
	aggregatedTotal.Add(float64(processed))
	batchesTotal.Inc()
	w.log.WithFields(logrus.Fields{
		"count": processed,
		"clock": w.clockString(),
	}).Info("Aggregated transactions")
	return nil
}

func (w *Worker) clockString() string {
	if w.localClock.IsZero() {
		return ""
	}
	return txkeys.FormatTimestamp(w.localClock)
}

// transaction is one validated stream message.
type transaction struct {
	ts     time.Time
	day    string
	txType string
	method string
	amount float64
}

func parseMessage(values map[string]string) (transaction, error) {
	ts, err := txkeys.ParseTimestamp(values["timestamp"])
	if err != nil {
		return transaction{}, fmt.Errorf("timestamp %q: %w", values["timestamp"], err)
	}
	txType := values["type"]
	if txType != txkeys.TypeDeposit && txType != txkeys.TypeWithdrawal {
		return transaction{}, fmt.Errorf("unknown transaction type %q", txType)
	}
	method := values["payment_method"]
	if method == "" {
		return transaction{}, errors.New("missing payment_method")
	}
	amt, err := amount.Parse(values["amount"])
	if err != nil {
		return transaction{}, fmt.Errorf("amount %q: %w", values["amount"], err)
	}
	return transaction{
		ts:     ts,
		day:    txkeys.Day(ts),
		txType: txType,
		method: method,
		amount: amt,
	}, nil
}

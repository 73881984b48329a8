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

// Package importer replays a pre-sorted transaction CSV as if it were a
// real-time feed. A single producer reads the file line by line and hands
// rows to a bounded channel; B workers each sleep for the row's declared
// sleep_ms and then append the row to the stream. The bounded channel is the
// backpressure mechanism: the producer blocks when the workers are
// saturated, so the file is never slurped into memory.
package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"txnstats/internal/txkeys"
)

// StreamAppender is the slice of the hot store the importer needs.
type StreamAppender interface {
	Append(ctx context.Context, stream string, values map[string]string) error
}

// Importer paces and publishes one CSV file onto the transaction stream.
type Importer struct {
	path    string
	stream  StreamAppender
	workers int
	queue   chan map[string]string
	log     *logrus.Entry
}

// New builds an importer with batchSize concurrent workers and a handoff
// queue of capacity 2*batchSize. It fails fast if the file does not exist.
func New(path string, stream StreamAppender, batchSize int, log *logrus.Logger) (*Importer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("CSV file not found: %s", path)
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Importer{
		path:    path,
		stream:  stream,
		workers: batchSize,
		queue:   make(chan map[string]string, batchSize*2),
		log:     log.WithField("component", "importer"),
	}, nil
}

// Run replays the whole file. It returns nil once every row has been handed
// to a worker and all workers have drained, or the context error if
// cancelled mid-file. Cancellation aborts in-flight sleeps immediately.
func (imp *Importer) Run(ctx context.Context) error {
	imp.log.WithFields(logrus.Fields{
		"file":       imp.path,
		"batch_size": imp.workers,
	}).Info("CSV importer started")

	var wg sync.WaitGroup
	for i := 0; i < imp.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			imp.worker(ctx, id)
		}(i)
	}

	err := imp.produce(ctx)
	// Closing the queue lets workers finish the backlog and exit; on
	// cancellation the workers bail out of their sleeps on their own.
	close(imp.queue)
	wg.Wait()

	switch {
	case err == nil:
		imp.log.Info("CSV importer finished successfully")
	case errors.Is(err, context.Canceled):
		imp.log.Info("CSV importer cancelled")
	default:
		imp.log.WithError(err).Error("CSV importer crashed")
	}
	return err
}

// produce reads the file sequentially: header first, then one row per line.
func (imp *Importer) produce(ctx context.Context) error {
	f, err := os.Open(imp.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", imp.path, err)
	}
	defer f.Close()

	imp.log.Info("CSV producer started")

	var header []string
	produced := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" {
			continue
		}
		if header == nil {
			header = strings.Split(line, ",")
			imp.log.WithField("header", header).Debug("CSV header loaded")
			continue
		}

		values := strings.Split(line, ",")
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(values) {
				row[col] = values[i]
			}
		}

		select {
		case imp.queue <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
		produced++
		rowsProduced.Inc()
		if produced%1000 == 0 {
			imp.log.WithField("rows", produced).Info("Produced rows")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", imp.path, err)
	}
	imp.log.WithField("total_rows", produced).Info("CSV producer finished")
	return nil
}

// worker paces and appends rows until the queue is closed or the context is
// cancelled.
func (imp *Importer) worker(ctx context.Context, id int) {
	log := imp.log.WithField("worker", id)
	log.Debug("Worker started")
	for {
		select {
		case <-ctx.Done():
			log.Debug("Worker cancelled")
			return
		case row, ok := <-imp.queue:
			if !ok {
				return
			}
			imp.processRow(ctx, log, row)
		}
	}
}

func (imp *Importer) processRow(ctx context.Context, log *logrus.Entry, row map[string]string) {
	sleepMs, err := strconv.Atoi(row["sleep_ms"])
	if err != nil || sleepMs < 0 {
		rowsSkipped.Inc()
		log.WithFields(logrus.Fields{
			"sleep_ms": row["sleep_ms"],
			"row":      row,
		}).Warn("Invalid sleep_ms value")
		return
	}

	if sleepMs > 0 {
		select {
		case <-time.After(time.Duration(sleepMs) * time.Millisecond):
		case <-ctx.Done():
			return
		}
	}

	if err := imp.stream.Append(ctx, txkeys.StreamName, row); err != nil {
		appendFailures.Inc()
		log.WithError(err).WithField("timestamp", row["timestamp"]).Error("Failed to push transaction to stream")
		return
	}
	rowsAppended.Inc()
	log.WithField("timestamp", row["timestamp"]).Debug("Transaction pushed")
}

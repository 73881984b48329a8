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

package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	mu      sync.Mutex
	rows    []map[string]string
	failFor string // timestamp value whose append should fail
}

func (f *fakeStream) Append(ctx context.Context, stream string, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.failFor != "" && values["timestamp"] == f.failFor {
		return errors.New("stream unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeStream) appended() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]string, len(f.rows))
	copy(out, f.rows)
	return out
}

func writeCSV(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tx.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

const header = "timestamp,type,payment_method,amount,sleep_ms\n"

func TestNewFailsFastOnMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.csv"), &fakeStream{}, 2, quietLogger())
	require.Error(t, err)
	require.Contains(t, err.Error(), "CSV file not found")
}

func TestRunAppendsEveryRow(t *testing.T) {
	path := writeCSV(t, header+
		"2026-01-01T00:00:00,deposit,card,10.00,0\n"+
		"2026-01-01T00:00:01,deposit,card,5.55,0\n"+
		"2026-01-02T09:30:00,withdrawal,wire,2.00,0\n")
	stream := &fakeStream{}
	imp, err := New(path, stream, 3, quietLogger())
	require.NoError(t, err)

	require.NoError(t, imp.Run(context.Background()))

	rows := stream.appended()
	require.Len(t, rows, 3)
	seen := map[string]bool{}
	for _, row := range rows {
		seen[row["timestamp"]] = true
		require.NotEmpty(t, row["type"])
		require.NotEmpty(t, row["payment_method"])
	}
	require.True(t, seen["2026-01-01T00:00:00"])
	require.True(t, seen["2026-01-01T00:00:01"])
	require.True(t, seen["2026-01-02T09:30:00"])
}

func TestRunSkipsInvalidSleepMs(t *testing.T) {
	path := writeCSV(t, header+
		"2026-01-01T00:00:00,deposit,card,10.00,abc\n"+
		"2026-01-01T00:00:01,deposit,card,5.55,0\n"+
		"2026-01-01T00:00:02,deposit,card,1.00,-5\n")
	stream := &fakeStream{}
	imp, err := New(path, stream, 2, quietLogger())
	require.NoError(t, err)

	require.NoError(t, imp.Run(context.Background()))

	rows := stream.appended()
	require.Len(t, rows, 1)
	require.Equal(t, "2026-01-01T00:00:01", rows[0]["timestamp"])
}

func TestRunContinuesPastAppendFailure(t *testing.T) {
	path := writeCSV(t, header+
		"2026-01-01T00:00:00,deposit,card,10.00,0\n"+
		"2026-01-01T00:00:01,deposit,card,5.55,0\n")
	stream := &fakeStream{failFor: "2026-01-01T00:00:00"}
	imp, err := New(path, stream, 1, quietLogger())
	require.NoError(t, err)

	require.NoError(t, imp.Run(context.Background()))

	rows := stream.appended()
	require.Len(t, rows, 1)
	require.Equal(t, "2026-01-01T00:00:01", rows[0]["timestamp"])
}

func TestRunEmptyFileIsANoOp(t *testing.T) {
	path := writeCSV(t, "")
	stream := &fakeStream{}
	imp, err := New(path, stream, 2, quietLogger())
	require.NoError(t, err)
	require.NoError(t, imp.Run(context.Background()))
	require.Empty(t, stream.appended())
}

func TestRunHeaderOnlyFileIsANoOp(t *testing.T) {
	path := writeCSV(t, header)
	stream := &fakeStream{}
	imp, err := New(path, stream, 2, quietLogger())
	require.NoError(t, err)
	require.NoError(t, imp.Run(context.Background()))
	require.Empty(t, stream.appended())
}

func TestCancellationAbortsInFlightSleeps(t *testing.T) {
	// One row with a sleep far longer than the test budget: cancellation
	// must not wait the sleep out.
	path := writeCSV(t, header+
		"2026-01-01T00:00:00,deposit,card,10.00,60000\n")
	stream := &fakeStream{}
	imp, err := New(path, stream, 1, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- imp.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("importer did not stop after cancellation")
	}
	require.Empty(t, stream.appended())
}

func TestPacingDelaysAppend(t *testing.T) {
	path := writeCSV(t, header+
		"2026-01-01T00:00:00,deposit,card,10.00,100\n")
	stream := &fakeStream{}
	imp, err := New(path, stream, 1, quietLogger())
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, imp.Run(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	require.Len(t, stream.appended(), 1)
}

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

// Package hotstore wraps the in-memory key-value store that holds the
// recent-window aggregates and the transaction stream. It exposes exactly
// the surface the pipeline needs (hashes, sets, pipelines, and an
// at-least-once consumer-group stream) so workers can be tested against
// small fakes. The production implementation sits on
// github.com/redis/go-redis/v9.
package hotstore

import "time"

// Message is one stream entry as delivered to a consumer group member.
type Message struct {
	ID     string
	Values map[string]string
}

// FieldInc is a single floating-point hash-field increment.
type FieldInc struct {
	Key   string
	Field string
	Delta float64
}

// WriteBatch is one pipelined round-trip of aggregator writes. Commands are
// issued in struct order: increments first, then tracked-day adds, then the
// clock write, then the acks. That ordering is a cross-component guarantee:
// a day's aggregate exists before the day appears in the tracked set, and
// nothing is acked before its updates were enqueued.
type WriteBatch struct {
	Incs  []FieldInc
	Days  []string
	Clock string // ISO-8601 virtual clock value; empty means no clock write
	Acks  []string
}

// Empty reports whether the batch carries no commands at all.
func (b *WriteBatch) Empty() bool {
	return len(b.Incs) == 0 && len(b.Days) == 0 && b.Clock == "" && len(b.Acks) == 0
}

// BlockTimeout is the default blocking-read timeout for group reads.
const BlockTimeout = 5 * time.Second

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

// Package txkeys defines the canonical key and name schema shared by every
// component of the pipeline. These strings are part of the wire contract
// between workers: the aggregator writes them, the archiver and the query
// service read them. Drifting key names is a silent data-loss bug, so all
// key construction goes through this package.
package txkeys

import (
	"fmt"
	"strings"
	"time"
)

const (
	// StreamName is the durable transaction log on the hot store.
	StreamName = "transactions"
	// GroupName is the consumer group the aggregators join.
	GroupName = "aggregators"

	// TrackedDaysKey holds the set of days with at least one hot aggregate.
	TrackedDaysKey = "system:tracked_days"
	// VirtualClockKey holds the maximum event timestamp ever acknowledged.
	VirtualClockKey = "system:virtual_clock"

	aggPrefix = "agg"
)

// Transaction types as they appear in the CSV and in aggregate keys.
const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
)

// TimestampLayout is the second-precision naive datetime format used by the
// CSV, the stream payload, and the virtual clock value.
const TimestampLayout = "2006-01-02T15:04:05"

// DayLayout is the calendar-day format used in aggregate keys, the
// tracked-days set, and cold documents.
const DayLayout = "2006-01-02"

// AggKey returns the hot-store hash key for one (day, type) aggregate,
// shaped agg:YYYY-MM-DD:type.
func AggKey(day, txType string) string {
	return fmt.Sprintf("%s:%s:%s", aggPrefix, day, txType)
}

// ParseDay extracts the day portion from an aggregate key produced by AggKey.
func ParseDay(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ParseTimestamp parses a stream/CSV timestamp value.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// FormatTimestamp renders a timestamp the way ParseTimestamp reads it.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Day renders the calendar day of a timestamp.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

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

package txkeys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggKeyShape(t *testing.T) {
	require.Equal(t, "agg:2026-01-01:deposit", AggKey("2026-01-01", TypeDeposit))
	require.Equal(t, "agg:2026-01-10:withdrawal", AggKey("2026-01-10", TypeWithdrawal))
}

func TestParseDayRoundTrip(t *testing.T) {
	for _, day := range []string{"2026-01-01", "2025-12-31", "2000-02-29"} {
		for _, typ := range []string{TypeDeposit, TypeWithdrawal} {
			require.Equal(t, day, ParseDay(AggKey(day, typ)))
		}
	}
}

func TestParseDayMalformed(t *testing.T) {
	require.Equal(t, "", ParseDay("garbage"))
}

func TestTimestampRoundTrip(t *testing.T) {
	ts, err := ParseTimestamp("2026-01-01T00:00:01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC), ts)
	require.Equal(t, "2026-01-01T00:00:01", FormatTimestamp(ts))
	require.Equal(t, "2026-01-01", Day(ts))
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("2026-01-01 00:00:01")
	require.Error(t, err)
	_, err = ParseTimestamp("abc")
	require.Error(t, err)
}

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

// Package amount holds the money rounding rule shared by the aggregator and
// the archiver: every value is rounded to two decimal places before it is
// written to either store.
package amount

import (
	"math"
	"strconv"
)

// Round2 rounds to two fractional digits, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Parse converts a decimal string to a float64 rounded to two places.
func Parse(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return Round2(v), nil
}

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

// Package coldstore wraps the document collection that holds archived days.
// The only write operation is an upsert with atomic field-level increments,
// which keeps archive retries additive rather than destructive.
package coldstore

// DayDoc is one archived day as stored in (and read back from) the
// collection. One document per day, keyed by Date.
type DayDoc struct {
	Date        string             `bson:"date"`
	Deposits    map[string]float64 `bson:"deposits"`
	Withdrawals map[string]float64 `bson:"withdrawals"`
}

// IncField builds the dotted field path for one (section, method) cell,
// e.g. "deposits.card".
func IncField(section, method string) string {
	return section + "s." + method
}

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

package archive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_archive_cycles_total",
		Help: "Archival passes attempted",
	})
	cycleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_archive_cycle_failures_total",
		Help: "Archival passes that failed and were retried next interval",
	})
	daysArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_archive_days_archived_total",
		Help: "Days migrated from the hot store to the cold store",
	})
)

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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_importer_rows_produced_total",
		Help: "CSV rows handed to the worker queue",
	})
	rowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_importer_rows_skipped_total",
		Help: "CSV rows dropped for an invalid sleep_ms",
	})
	rowsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_importer_rows_appended_total",
		Help: "Rows successfully appended to the stream",
	})
	appendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_importer_append_failures_total",
		Help: "Stream append failures (row logged and dropped)",
	})
)

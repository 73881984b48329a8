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

package aggregate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_aggregated_transactions_total",
		Help: "Transactions applied to hot aggregates and acked",
	})
	malformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_malformed_messages_total",
		Help: "Stream messages dropped as malformed (acked on skip)",
	})
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txnstats_aggregator_batches_total",
		Help: "Pipelined write batches executed",
	})
)

// Copyright 2021 FerretDB Inc.
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

package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/FerretDB/mongodbhandler/internal/util/must"
)

const (
	namespace = "mongodbhandler"
	subsystem = "handler"
)

// metrics represents handler metrics.
type metrics struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// newMetrics creates handler metrics.
func newMetrics() *metrics {
	return &metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operations_total",
				Help:      "Total number of operations.",
			},
			[]string{"operation", "result"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Operation durations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// result returns the result label for err:
// "ok", handler error code name, or "driver_error".
func result(err error) string {
	if err == nil {
		return "ok"
	}

	var e *Error
	if errors.As(err, &e) {
		return e.code.String()
	}

	return "driver_error"
}

// observe records the operation result.
func (m *metrics) observe(op string, err error, d time.Duration) {
	m.operations.WithLabelValues(op, result(err)).Inc()
	m.durations.WithLabelValues(op).Observe(d.Seconds())
}

// results returns a map of operation -> result -> count.
func (m *metrics) results() map[string]map[string]int {
	ch := make(chan prometheus.Metric)
	go func() {
		m.operations.Collect(ch)
		close(ch)
	}()

	res := map[string]map[string]int{}

	for metric := range ch {
		var content dto.Metric
		must.NoError(metric.Write(&content))

		var op, r string

		for _, label := range content.GetLabel() {
			switch label.GetName() {
			case "operation":
				op = label.GetValue()
			case "result":
				r = label.GetValue()
			default:
				panic(fmt.Sprintf("%s is not a valid label. Allowed: [operation, result]", label.GetName()))
			}
		}

		if res[op] == nil {
			res[op] = map[string]int{}
		}

		res[op][r] += int(content.GetCounter().GetValue())
	}

	return res
}

// Describe implements prometheus.Collector.
func (h *Handler) Describe(ch chan<- *prometheus.Desc) {
	h.m.operations.Describe(ch)
	h.m.durations.Describe(ch)
}

// Collect implements prometheus.Collector.
func (h *Handler) Collect(ch chan<- prometheus.Metric) {
	h.m.operations.Collect(ch)
	h.m.durations.Collect(ch)
}

// check interfaces
var (
	_ prometheus.Collector = (*Handler)(nil)
)

// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-paktools.
//
// go-paktools is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for paktool runs.
// A run is a single short-lived process, so instead of serving /metrics the
// collected series are written to a node-exporter textfile on exit.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all paktool metrics
	Namespace = "paktool"

	// Label names
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorType = "error_type"
	LabelDirection = "direction"
	LabelFormat    = "format"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Byte directions
	DirectionIn  = "in"
	DirectionOut = "out"

	// Operation names
	OpDecrypt = "decrypt"
	OpEncrypt = "encrypt"
	OpInspect = "inspect"
	OpConvert = "convert"
)

var (
	// Registry holds every paktool series. It is separate from the default
	// registerer so the textfile only carries what a run produced.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// OperationsTotal counts operations by name and status.
	OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of paktool operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks the duration of operations in seconds.
	OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of paktool operations in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal counts failures by operation and error type
	// (e.g. "invalid_key", "invalid_length", "not_found").
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// BytesTotal counts bytes read and written by operation.
	BytesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_total",
			Help:      "Total number of bytes read (in) and written (out) by operation",
		},
		[]string{LabelOperation, LabelDirection},
	)

	// BlocksTotal counts 16-byte cipher blocks processed.
	BlocksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blocks_total",
			Help:      "Total number of cipher blocks processed by operation",
		},
		[]string{LabelOperation},
	)

	// RosterRecordsTotal counts records emitted by the roster converter.
	RosterRecordsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "roster",
			Name:      "records_total",
			Help:      "Total number of roster records emitted by input format",
		},
		[]string{LabelFormat},
	)

	// MemoryAllocBytes is the heap in use when the run finished.
	MemoryAllocBytes = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_alloc_bytes",
			Help:      "Bytes of allocated heap objects at the end of the run",
		},
	)

	// MemorySysBytes is the memory obtained from the OS when the run finished.
	MemorySysBytes = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_sys_bytes",
			Help:      "Total bytes of memory obtained from the OS at the end of the run",
		},
	)

	// GCPauseTotalSeconds is the cumulative GC pause time of the run.
	GCPauseTotalSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gc_pause_total_seconds",
			Help:      "Cumulative time spent in GC stop-the-world pauses",
		},
	)

	// LastRunTimestamp is the unix time at which the textfile was written.
	LastRunTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last paktool run",
		},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records an operation with its duration and status.
//
// Example:
//
//	start := time.Now()
//	_, err := driver.Decrypt(ctx, req)
//	status := metrics.StatusSuccess
//	if err != nil {
//	    status = metrics.StatusError
//	}
//	metrics.RecordOperation(metrics.OpDecrypt, status, time.Since(start).Seconds())
func RecordOperation(operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records a failed operation by error type.
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordBytes records the bytes read and written by one operation.
func RecordBytes(operation string, in, out int) {
	if !enabled.Load() {
		return
	}
	BytesTotal.WithLabelValues(operation, DirectionIn).Add(float64(in))
	BytesTotal.WithLabelValues(operation, DirectionOut).Add(float64(out))
}

// RecordBlocks records the number of cipher blocks processed.
func RecordBlocks(operation string, blocks int) {
	if !enabled.Load() {
		return
	}
	BlocksTotal.WithLabelValues(operation).Add(float64(blocks))
}

// RecordRosterRecords records the number of records converted from format.
func RecordRosterRecords(format string, records int) {
	if !enabled.Load() {
		return
	}
	RosterRecordsTotal.WithLabelValues(format).Add(float64(records))
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}

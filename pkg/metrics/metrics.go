// Package metrics exposes Prometheus collectors for tsvstore loads.
//
// # Basic Usage
//
//	timer := metrics.NewTimer(metrics.PhaseParse)
//	block, err := parser.ParseFile(ctx, path, layout)
//	timer.ObserveBlock(err)
//
//	metrics.RowsIngested.Add(float64(block.Rows))
//
// All collectors are registered with the default registry at package init;
// serve them with promhttp.Handler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Phase labels.
const (
	PhaseParse    = "parse"
	PhaseFanout   = "fanout"
	PhaseFinalize = "finalize"
	PhaseLoad     = "load"
)

var (
	// BlocksParsed counts parse tasks by outcome (success, error).
	BlocksParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsvstore_blocks_parsed_total",
			Help: "Total number of input files parsed into blocks",
		},
		[]string{"status"},
	)

	// RowsIngested counts rows appended to columns.
	RowsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tsvstore_rows_ingested_total",
			Help: "Total number of rows fanned out into columns",
		},
	)

	// PhaseDuration records the wall time of each pipeline phase.
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tsvstore_phase_duration_seconds",
			Help:    "Duration of pipeline phases",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"phase"},
	)

	// BlockParseDuration records the time to parse one input file.
	BlockParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tsvstore_block_parse_duration_seconds",
			Help:    "Time to parse one input file",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	// PendingBlocks is the number of parsed blocks waiting to be consumed.
	PendingBlocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tsvstore_pending_blocks",
			Help: "Parsed blocks not yet consumed by the orchestrator",
		},
	)

	// ColumnsFinalized counts finalized columns by kind.
	ColumnsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsvstore_columns_finalized_total",
			Help: "Total number of columns finalized",
		},
		[]string{"kind"},
	)
)

// Timer measures one phase or parse task.
type Timer struct {
	start time.Time
	phase string
}

// NewTimer starts timing phase immediately.
func NewTimer(phase string) *Timer {
	return &Timer{
		start: time.Now(),
		phase: phase,
	}
}

// Stop returns the elapsed time and records it in PhaseDuration.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	PhaseDuration.WithLabelValues(t.phase).Observe(d.Seconds())
	return d
}

// ObserveBlock records one parse task outcome and its duration.
func (t *Timer) ObserveBlock(err error) time.Duration {
	d := time.Since(t.start)
	BlockParseDuration.Observe(d.Seconds())
	if err != nil {
		BlocksParsed.WithLabelValues("error").Inc()
	} else {
		BlocksParsed.WithLabelValues("success").Inc()
	}
	return d
}

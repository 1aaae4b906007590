// pkg/logging/metrics.go
package logging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus counters for the record pipeline.
//
// All metrics are prefixed with "logkit_":
//   - logkit_records_total{severity} - records serialized
//   - logkit_serialize_errors_total - records rejected by the encoder
//   - logkit_console_lines_total{stream} - lines written to stdout/stderr
//   - logkit_file_writes_total - lines appended to log files
//   - logkit_file_write_errors_total - appends that failed and were discarded
//   - logkit_file_dropped_total - lines dropped because the writer queue was full
type Metrics struct {
	RecordsTotal         *prometheus.CounterVec
	SerializeErrorsTotal prometheus.Counter
	ConsoleLinesTotal    *prometheus.CounterVec
	FileWritesTotal      prometheus.Counter
	FileWriteErrorsTotal prometheus.Counter
	FileDroppedTotal     prometheus.Counter
}

// NewMetrics creates the pipeline metrics and registers them with reg.
// A nil reg creates unregistered collectors, useful in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logkit_records_total",
				Help: "Total number of log records serialized",
			},
			[]string{"severity"},
		),
		SerializeErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "logkit_serialize_errors_total",
			Help: "Total number of log records the JSON encoder rejected",
		}),
		ConsoleLinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logkit_console_lines_total",
				Help: "Total number of lines written to the console",
			},
			[]string{"stream"}, // "stdout" or "stderr"
		),
		FileWritesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "logkit_file_writes_total",
			Help: "Total number of lines appended to log files",
		}),
		FileWriteErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "logkit_file_write_errors_total",
			Help: "Total number of failed log file appends (discarded)",
		}),
		FileDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "logkit_file_dropped_total",
			Help: "Total number of lines dropped because the file writer queue was full",
		}),
	}
}

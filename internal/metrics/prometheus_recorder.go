package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the Recorder
// interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	runStatusCounter   *prometheus.CounterVec
	runDurationSeconds *prometheus.HistogramVec

	stageDurationSeconds *prometheus.HistogramVec
	stageRecordCount     *prometheus.GaugeVec

	failedSimulations *prometheus.GaugeVec
}

// NewPrometheusRecorder creates a recorder with its own registry, including
// the Go runtime and process collectors.
func NewPrometheusRecorder() Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		runStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postproc_run_status_total",
			Help: "Total pipeline runs by status.",
		}, []string{"status"}),
		runDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postproc_run_duration_seconds",
			Help:    "Duration of pipeline runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		stageDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postproc_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		stageRecordCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postproc_stage_record_count",
			Help: "Rows produced per pipeline stage.",
		}, []string{"stage"}),
		failedSimulations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postproc_failed_simulations",
			Help: "Failed simulation count per upgrade scenario.",
		}, []string{"upgrade_id"}),
	}

	registry.MustRegister(r.runStatusCounter)
	registry.MustRegister(r.runDurationSeconds)
	registry.MustRegister(r.stageDurationSeconds)
	registry.MustRegister(r.stageRecordCount)
	registry.MustRegister(r.failedSimulations)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordRunStart records the start of a pipeline run.
func (r *PrometheusRecorder) RecordRunStart(ctx context.Context) {
	r.runStatusCounter.WithLabelValues("RUNNING").Inc()
	logger.Debugf("Metrics: run started.")
}

// RecordRunEnd records the end of a pipeline run.
func (r *PrometheusRecorder) RecordRunEnd(ctx context.Context, status string, duration time.Duration) {
	r.runStatusCounter.WithLabelValues(status).Inc()
	r.runDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
	logger.Debugf("Metrics: run ended with %s after %.3fs.", status, duration.Seconds())
}

// RecordStage records one stage duration.
func (r *PrometheusRecorder) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	r.stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRecords records a stage's output row count.
func (r *PrometheusRecorder) RecordRecords(ctx context.Context, stage string, count int) {
	r.stageRecordCount.WithLabelValues(stage).Set(float64(count))
}

// RecordFailedSimulations records one upgrade's failed-simulation count.
func (r *PrometheusRecorder) RecordFailedSimulations(ctx context.Context, upgradeID int64, count int) {
	r.failedSimulations.WithLabelValues(strconv.FormatInt(upgradeID, 10)).Set(float64(count))
}

var _ Recorder = (*PrometheusRecorder)(nil)

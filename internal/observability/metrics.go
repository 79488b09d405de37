package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job metrics
	activeJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aivoice_active_jobs",
		Help: "Number of synthesis jobs currently running",
	})

	totalJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aivoice_jobs_total",
		Help: "Total number of synthesis jobs processed",
	}, []string{"status"})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aivoice_job_duration_seconds",
		Help:    "End-to-end duration of synthesis jobs in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	// Chunk synthesis metrics
	chunksSynthesized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aivoice_chunks_synthesized_total",
		Help: "Total number of chunk synthesis calls",
	}, []string{"status"})

	chunkLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aivoice_chunk_latency_seconds",
		Help:    "Latency of a single chunk synthesis call in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	chunkRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aivoice_chunk_retries_total",
		Help: "Total number of chunk synthesis retries",
	})

	plainFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aivoice_plain_fallbacks_total",
		Help: "Total number of chunks that fell back to the plain-text synthesis path",
	})

	// Assembler metrics
	assemblerMethod = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aivoice_assembler_method_total",
		Help: "Assembly outcomes by method (concat, reencode, copy_first)",
	}, []string{"method"})

	// Memory adaptation metrics
	memoryReclaims = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aivoice_memory_reclaims_total",
		Help: "Total number of forced memory reclaim passes",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aivoice_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Audio metrics
	audioBytesOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aivoice_audio_bytes_total",
		Help: "Total assembled audio bytes produced",
	})
)

// JobMetrics tracks metrics for a single synthesis job
type JobMetrics struct {
	jobID     string
	startTime time.Time
}

// NewJobMetrics creates a new metrics tracker for a job
func NewJobMetrics(jobID string) *JobMetrics {
	return &JobMetrics{
		jobID:     jobID,
		startTime: time.Now(),
	}
}

// RecordJobStart records the start of a job
func (m *JobMetrics) RecordJobStart() {
	activeJobs.Inc()
}

// RecordJobEnd records the end of a job
func (m *JobMetrics) RecordJobEnd(success bool) {
	activeJobs.Dec()
	jobDuration.Observe(time.Since(m.startTime).Seconds())

	status := "success"
	if !success {
		status = "error"
	}
	totalJobs.WithLabelValues(status).Inc()
}

// RecordChunk records one finished chunk synthesis attempt sequence.
// Chunks run concurrently, so the caller passes the elapsed time instead
// of this tracker keeping a single shared start timestamp.
func (m *JobMetrics) RecordChunk(success bool, elapsed time.Duration) {
	chunkLatency.Observe(elapsed.Seconds())

	status := "success"
	if !success {
		status = "error"
	}
	chunksSynthesized.WithLabelValues(status).Inc()
}

// RecordRetry records a chunk synthesis retry
func (m *JobMetrics) RecordRetry() {
	chunkRetries.Inc()
}

// RecordPlainFallback records a chunk that used the plain-text path
func (m *JobMetrics) RecordPlainFallback() {
	plainFallbacks.Inc()
}

// RecordError records an error
func (m *JobMetrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordAudioBytes records assembled audio bytes
func (m *JobMetrics) RecordAudioBytes(bytes int64) {
	audioBytesOut.Add(float64(bytes))
}

// RecordAssemblerMethod records which assembly method produced the output
func RecordAssemblerMethod(method string) {
	assemblerMethod.WithLabelValues(method).Inc()
}

// RecordMemoryReclaim records a forced memory reclaim pass
func RecordMemoryReclaim() {
	memoryReclaims.Inc()
}

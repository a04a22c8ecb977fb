package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Engine metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	VolumeUsedBytes   *prometheus.GaugeVec
	VolumeTotalBytes  *prometheus.GaugeVec
	CompressionRatio  *prometheus.HistogramVec
	MountsActive      prometheus.Gauge

	// Shell and plugin metrics
	ShellCommands *prometheus.CounterVec
	PluginsLoaded prometheus.Gauge

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON stats endpoint
type Snapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	TotalOperations int64   `json:"total_operations"`
	FailedOps       int64   `json:"failed_operations"`
	AvgRequestMs    float64 `json:"avg_request_ms"`
	UptimeSeconds   float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vfs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vfs_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vfs_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Engine metrics
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfs_operations_total",
				Help: "Total number of engine operations",
			},
			[]string{"op", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vfs_operation_duration_seconds",
				Help:    "Engine operation duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"op"},
		),
		VolumeUsedBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vfs_volume_used_bytes",
				Help: "Bytes charged against volume capacity",
			},
			[]string{"volume"},
		),
		VolumeTotalBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vfs_volume_total_bytes",
				Help: "Declared volume capacity in bytes",
			},
			[]string{"volume"},
		),
		CompressionRatio: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vfs_compression_ratio",
				Help:    "Compressed size divided by plaintext size",
				Buckets: []float64{.1, .25, .5, .75, .9, 1, 1.5},
			},
			[]string{"algorithm"},
		),
		MountsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "vfs_mounts_active",
				Help: "Number of mounted volumes",
			},
		),

		// Shell and plugin metrics
		ShellCommands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfs_shell_commands_total",
				Help: "Total number of shell commands executed",
			},
			[]string{"command", "status"},
		),
		PluginsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "vfs_plugins_loaded",
				Help: "Number of loaded plugins",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vfs_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records one engine operation. The status label is "ok"
// or "error".
func (m *Metrics) RecordOperation(op string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Operations.WithLabelValues(op, status).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalOperations++
	if err != nil {
		m.snapshot.FailedOps++
	}
	m.mu.Unlock()
}

// SetVolumeSpace publishes a volume's usage.
func (m *Metrics) SetVolumeSpace(volume string, used, total uint64) {
	m.VolumeUsedBytes.WithLabelValues(volume).Set(float64(used))
	m.VolumeTotalBytes.WithLabelValues(volume).Set(float64(total))
}

// ForgetVolume drops the series of a volume that is no longer open.
func (m *Metrics) ForgetVolume(volume string) {
	m.VolumeUsedBytes.DeleteLabelValues(volume)
	m.VolumeTotalBytes.DeleteLabelValues(volume)
}

// ObserveCompression records the ratio achieved on one file.
func (m *Metrics) ObserveCompression(algorithm string, plain, compressed int) {
	if plain == 0 {
		return
	}
	m.CompressionRatio.WithLabelValues(algorithm).Observe(float64(compressed) / float64(plain))
}

// RecordShellCommand records a shell command outcome. Unregistered
// command names should be reported as "unknown" by the caller.
func (m *Metrics) RecordShellCommand(command, status string) {
	m.ShellCommands.WithLabelValues(command, status).Inc()
}

// SetPluginsLoaded sets the number of loaded plugins
func (m *Metrics) SetPluginsLoaded(count int) {
	m.PluginsLoaded.Set(float64(count))
}

// Snapshot returns current totals for the JSON stats endpoint.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgRequestMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

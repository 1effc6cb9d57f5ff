// Package metrics provides Prometheus metrics for the achievehub service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Participation lifecycle
	registrations  *prometheus.CounterVec
	confirmations  *prometheus.CounterVec
	surveys        *prometheus.CounterVec
	certificates   *prometheus.CounterVec
	quizAttempts   *prometheus.CounterVec
	skillUpgrades  prometheus.Counter
	assessmentLoss prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Record store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "achievehub",
		subsystem:        "tracker",
		histogramBuckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.registrations = m.counterVec("registrations_total",
		"Activity registration attempts by outcome", "outcome")
	m.confirmations = m.counterVec("confirmations_total",
		"Attendance confirmation attempts by method and outcome", "method", "outcome")
	m.surveys = m.counterVec("surveys_total",
		"Survey submissions by outcome", "outcome")
	m.certificates = m.counterVec("certificates_total",
		"Certificate requests by result (issued, existing, rejected)", "result")
	m.quizAttempts = m.counterVec("quiz_attempts_total",
		"Quiz attempts by result (passed, failed)", "result")

	m.skillUpgrades = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "completed_skill_writes_total",
		Help:        "Completed-skill records created or raised to a higher score",
		ConstLabels: m.constLabels,
	})
	m.assessmentLoss = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assessment_write_failures_total",
		Help:        "Assessment records that could not be stored (survey still accepted)",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.storeLatency = m.histogramVec("store_operation_duration_milliseconds",
		"Record store round-trip latency by table and operation", "table", "operation")
	m.storeErrors = m.counterVec("store_errors_total",
		"Record store failures by table and operation", "table", "operation")

	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint, method and type", "endpoint", "method", "error_type")
}

// RecordRegistration counts a registration attempt.
func RecordRegistration(outcome string) {
	globalManager.registrations.WithLabelValues(outcome).Inc()
}

// RecordConfirmation counts a confirmation attempt, method is qr or geo.
func RecordConfirmation(method, outcome string) {
	globalManager.confirmations.WithLabelValues(method, outcome).Inc()
}

// RecordSurvey counts a survey submission.
func RecordSurvey(outcome string) {
	globalManager.surveys.WithLabelValues(outcome).Inc()
}

// RecordCertificate counts a certificate request.
func RecordCertificate(result string) {
	globalManager.certificates.WithLabelValues(result).Inc()
}

// RecordQuizAttempt counts a graded quiz.
func RecordQuizAttempt(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	globalManager.quizAttempts.WithLabelValues(result).Inc()
}

// RecordCompletedSkillWrite counts a completed-skill create or upgrade.
func RecordCompletedSkillWrite() {
	globalManager.skillUpgrades.Inc()
}

// RecordAssessmentWriteFailure counts a swallowed assessment write failure.
func RecordAssessmentWriteFailure() {
	globalManager.assessmentLoss.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordStoreOperation records the latency of one store round trip.
func RecordStoreOperation(table, operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(table, operation).Observe(latencyMs)
}

// RecordStoreError counts a failed store round trip.
func RecordStoreError(table, operation string) {
	globalManager.storeErrors.WithLabelValues(table, operation).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the registry that backs the /metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

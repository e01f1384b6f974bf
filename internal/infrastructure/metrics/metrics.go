package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification workflow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Case transitions by history action
	Transitions *prometheus.CounterVec

	// Notifier failures by template kind and stage (in_app, delivery)
	NotificationFailures *prometheus.CounterVec

	// Expiration reminders by threshold in days
	RemindersSent *prometheus.CounterVec

	// Per-case failures inside a scheduler run by phase (expire, remind, lock)
	SweepFailures *prometheus.CounterVec

	SweepDuration prometheus.Histogram

	// Upload attempts by result: stored, rejected, storage_error or db_error
	Uploads *prometheus.CounterVec
}

// New registers the verification metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_transitions_total",
			Help: "Total verification case transitions by action",
		}, []string{"action"}),

		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_notifications_failed_total",
			Help: "Notifications that failed after commit by kind and stage",
		}, []string{"kind", "stage"}),

		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_reminders_sent_total",
			Help: "Expiration reminders sent by threshold in days",
		}, []string{"threshold"}),

		SweepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_sweep_failures_total",
			Help: "Per-case failures during scheduled sweeps by phase",
		}, []string{"phase"}),

		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "verification_sweep_duration_seconds",
			Help:    "Duration of one reminder and expiry sweep",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_uploads_total",
			Help: "Document upload attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncTransition(action string) {
	if m != nil {
		m.Transitions.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IncNotificationFailure(kind, stage string) {
	if m != nil {
		m.NotificationFailures.WithLabelValues(kind, stage).Inc()
	}
}

func (m *Metrics) IncReminder(thresholdDays int) {
	if m != nil {
		m.RemindersSent.WithLabelValues(strconv.Itoa(thresholdDays)).Inc()
	}
}

func (m *Metrics) IncSweepFailure(phase string) {
	if m != nil {
		m.SweepFailures.WithLabelValues(phase).Inc()
	}
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m != nil {
		m.SweepDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncUpload(result string) {
	if m != nil {
		m.Uploads.WithLabelValues(result).Inc()
	}
}

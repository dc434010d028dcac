package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"yieldRecon/internal/model"
)

// Event outcomes counted per stream.
const (
	OutcomeApplied   = "applied"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeUnmatched = "unmatched"
)

var (
	passTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "passes_total",
		Help:      "Count of reconciliation passes by final phase.",
	}, []string{"stream", "phase", "status"})

	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "pass_duration_seconds",
		Help:      "Duration of reconciliation passes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stream", "status"})

	passBlocks = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "pass_blocks",
		Help:      "Number of blocks covered per pass.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
	}, []string{"stream"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "events_total",
		Help:      "Count of matched events by outcome.",
	}, []string{"stream", "outcome"})

	cursorBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "cursor_block",
		Help:      "Last processed block per stream.",
	}, []string{"stream"})

	lockSkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "trigger",
		Name:      "lock_skips_total",
		Help:      "Count of triggers skipped because another instance held the lock.",
	}, []string{"stream", "source"})

	triggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "trigger",
		Name:      "requests_total",
		Help:      "Count of reconciliation triggers by source and status.",
	}, []string{"stream", "source", "status"})

	attemptAlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "attempt_alerts_total",
		Help:      "Count of distributions that failed at least the alert threshold of attempts.",
	}, []string{"stream"})
)

// Reconciler tracks metrics for reconciliation passes and triggers.
type Reconciler struct{}

// NewReconciler constructs a Reconciler collector.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ObservePass records the final phase, duration and block span of a pass.
func (m Reconciler) ObservePass(summary model.Summary, err error, started time.Time) {
	status := statusOf(err)
	stream := label(summary.Stream)
	phase := string(summary.Phase)
	if phase == "" {
		phase = string(model.PhaseIdle)
	}
	passTotal.WithLabelValues(stream, phase, status).Inc()
	passDuration.WithLabelValues(stream, status).Observe(time.Since(started).Seconds())
	if err == nil && summary.ToBlock >= summary.FromBlock && !summary.Idle {
		passBlocks.WithLabelValues(stream).Observe(float64(summary.ToBlock - summary.FromBlock + 1))
	}
}

// ObserveEvent counts one event outcome.
func (m Reconciler) ObserveEvent(stream, outcome string) {
	eventsTotal.WithLabelValues(label(stream), outcome).Inc()
}

// SetCursor exports the cursor position.
func (m Reconciler) SetCursor(stream string, block uint64) {
	cursorBlock.WithLabelValues(label(stream)).Set(float64(block))
}

// ObserveTrigger counts a trigger and whether it ran or was skipped.
func (m Reconciler) ObserveTrigger(stream, source string, acquired bool, err error) {
	source = label(source)
	if err == nil && !acquired {
		lockSkipsTotal.WithLabelValues(label(stream), source).Inc()
	}
	triggersTotal.WithLabelValues(label(stream), source, statusOf(err)).Inc()
}

// ObserveAttemptAlert counts a record crossing the alert threshold.
func (m Reconciler) ObserveAttemptAlert(stream string) {
	attemptAlertsTotal.WithLabelValues(label(stream)).Inc()
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

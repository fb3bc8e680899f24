package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for the agent core and the webwritten
// service. A nil *Metrics is valid and records nothing, so tests can pass
// nil without wiring a registry.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	SessionsFinished   *prometheus.CounterVec // label: outcome (complete|question|error)
	SessionIterations  prometheus.Histogram
	ToolCalls          *prometheus.CounterVec // labels: tool, status (ok|error)
	VotesTotal         prometheus.Counter
	SentencesSubmitted prometheus.Counter
	WinnersSelected    prometheus.Counter
}

// NewMetrics creates and registers the partybot metric set.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partybot_sessions_started_total",
			Help: "Agent sessions created.",
		}),
		SessionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partybot_sessions_finished_total",
			Help: "Agent session run outcomes.",
		}, []string{"outcome"}),
		SessionIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "partybot_session_iterations",
			Help:    "Model iterations per finished agent session.",
			Buckets: []float64{1, 2, 3, 5, 8, 12, 16, 20},
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partybot_tool_calls_total",
			Help: "Tool calls dispatched by the agent loop.",
		}, []string{"tool", "status"}),
		VotesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partybot_webwritten_votes_total",
			Help: "Votes accepted by the webwritten service.",
		}),
		SentencesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partybot_webwritten_sentences_submitted_total",
			Help: "User sentences accepted into the pool.",
		}),
		WinnersSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partybot_webwritten_winners_total",
			Help: "Daily winners appended to the story.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SessionsStarted,
			m.SessionsFinished,
			m.SessionIterations,
			m.ToolCalls,
			m.VotesTotal,
			m.SentencesSubmitted,
			m.WinnersSelected,
		)
	}
	return m
}

// RecordSessionStart increments the session counter.
func (m *Metrics) RecordSessionStart() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// RecordSessionFinish records a run outcome and its iteration count.
func (m *Metrics) RecordSessionFinish(outcome string, iterations int) {
	if m == nil {
		return
	}
	m.SessionsFinished.WithLabelValues(outcome).Inc()
	m.SessionIterations.Observe(float64(iterations))
}

// RecordToolCall records one dispatched tool call.
func (m *Metrics) RecordToolCall(tool string, isError bool) {
	if m == nil {
		return
	}
	status := "ok"
	if isError {
		status = "error"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}

// RecordVote increments the vote counter.
func (m *Metrics) RecordVote() {
	if m == nil {
		return
	}
	m.VotesTotal.Inc()
}

// RecordSubmission increments the sentence submission counter.
func (m *Metrics) RecordSubmission() {
	if m == nil {
		return
	}
	m.SentencesSubmitted.Inc()
}

// RecordWinner increments the daily winner counter.
func (m *Metrics) RecordWinner() {
	if m == nil {
		return
	}
	m.WinnersSelected.Inc()
}

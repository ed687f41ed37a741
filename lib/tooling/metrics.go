// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace prefixes every metric name. Default: "hotpreview".
	Namespace string

	// Registerer receives the collectors. Default:
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Metrics records session and dispatch activity. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	activeSessions     prometheus.Gauge
	activeApps         prometheus.Gauge
	sessionsAccepted   prometheus.Counter
	registrations      prometheus.Counter
	navigations        *prometheus.CounterVec
	commandInvocations *prometheus.CounterVec
	snapshotCaptures   *prometheus.CounterVec
}

// Result label values.
const (
	resultOK        = "ok"
	resultFailed    = "failed"
	resultNotFound  = "not_found"
	resultUnchanged = "unchanged"
)

// NewMetrics creates and registers the collectors.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "hotpreview"
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registerer)

	return &Metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "active_sessions",
			Help:      "App connections currently open",
		}),
		activeApps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "active_apps",
			Help:      "Apps currently present in the directory",
		}),
		sessionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "sessions_accepted_total",
			Help:      "App connections accepted",
		}),
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "registrations_total",
			Help:      "Successful app registrations",
		}),
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "navigations_total",
			Help:      "Preview navigation requests by result",
		}, []string{"result"}),
		commandInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "command_invocations_total",
			Help:      "Command invocation requests by result",
		}, []string{"result"}),
		snapshotCaptures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "snapshot_captures_total",
			Help:      "Per-session preview captures by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.sessionsAccepted.Inc()
	m.activeSessions.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) appAdded() {
	if m == nil {
		return
	}
	m.activeApps.Inc()
}

func (m *Metrics) appRemoved() {
	if m == nil {
		return
	}
	m.activeApps.Dec()
}

func (m *Metrics) registered() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) navigation(result string) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(result).Inc()
}

func (m *Metrics) commandInvocation(result string) {
	if m == nil {
		return
	}
	m.commandInvocations.WithLabelValues(result).Inc()
}

func (m *Metrics) snapshotCapture(result string) {
	if m == nil {
		return
	}
	m.snapshotCaptures.WithLabelValues(result).Inc()
}

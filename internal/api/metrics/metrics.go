// Package metrics defines and registers all custom Prometheus metrics for
// the DataMind auth engine. It is the single source of truth for metric
// names, labels, and help strings. Metrics register themselves with the
// default registry via promauto at import time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datamind"

// SignupsTotal counts account creation attempts.
// Label:
//   - result: "ok", "duplicate", or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "rejected", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ResolutionsTotal counts bearer-token session resolutions on protected
// routes.
// Label:
//   - result: "ok", "expired", "revoked", or "invalid"
var ResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session resolutions on protected routes, by result.",
	},
	[]string{"result"},
)

// SessionsRevokedTotal counts explicit logouts.
var SessionsRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of sessions revoked by logout.",
	},
)

// DatabaseProbesTotal counts privileged connection probes against user
// databases.
// Label:
//   - result: "ok" or "unreachable"
var DatabaseProbesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "database_probes_total",
		Help:      "Total number of user database connection probes, by result.",
	},
	[]string{"result"},
)

// Package metrics defines and registers all custom Prometheus metrics for
// the training records API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics use promauto and register with the default registry at package
// init; the /metrics endpoint is wired by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "training"

// LoginAttemptsTotal counts authentication attempts.
// Label:
//   - result: "success", "invalid_credentials", or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// RecordMutationsTotal counts record create/update/delete operations.
// Labels:
//   - op: "create", "update", or "delete"
//   - result: "success", "validation_error", "conflict", "forbidden",
//     "not_found", or "error"
var RecordMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_mutations_total",
		Help:      "Total number of record mutations, by operation and outcome.",
	},
	[]string{"op", "result"},
)

// RecordExportsTotal counts generated export artifacts.
var RecordExportsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_exports_total",
		Help:      "Total number of record export artifacts generated.",
	},
)

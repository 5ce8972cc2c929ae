package service

import "github.com/prometheus/client_golang/prometheus"

var (
	interactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "recipe_interactions_total", Help: "Completed social interactions"},
		[]string{"action"},
	)
	reconcileRepairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reconcile_repairs_total", Help: "Rows repaired by the reconciler"},
		[]string{"kind"},
	)
)

func init() { prometheus.MustRegister(interactionsTotal, reconcileRepairsTotal) }

func countInteraction(action string) { interactionsTotal.WithLabelValues(action).Inc() }

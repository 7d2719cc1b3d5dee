package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestly_loader_attempts_total",
		Help: "Fetch attempts by loader and outcome.",
	}, []string{"loader", "outcome"})

	retriesScheduled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestly_loader_retries_scheduled_total",
		Help: "Retries scheduled after a failed fetch.",
	}, []string{"loader"})

	staleDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestly_loader_stale_completions_total",
		Help: "Completions discarded because a newer load superseded them.",
	}, []string{"loader"})
)

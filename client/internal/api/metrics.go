package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statusPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meshcapade_client",
			Name:      "status_polls_total",
			Help:      "Avatar status queries issued by Download, by observed state.",
		},
		[]string{"state"},
	)

	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meshcapade_client",
			Name:      "downloads_total",
			Help:      "Completed Download calls by outcome (ok, failed, timeout, error).",
		},
		[]string{"outcome"},
	)
)

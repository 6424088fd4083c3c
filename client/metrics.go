package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "meshcapade_client",
		Name:      "requests_total",
		Help:      "HTTP requests sent by the client, by method and status code (\"error\" when no response).",
	},
	[]string{"method", "code"},
)

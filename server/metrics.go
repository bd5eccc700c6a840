package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classverse_messages_sent_total",
		Help: "Number of chat messages accepted by the server.",
	})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classverse_websocket_connections",
		Help: "Currently open websocket connections.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classverse_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

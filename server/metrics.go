package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	sessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_sessions_issued_total",
		Help: "Access tokens issued via login and refresh.",
	})

	sessionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_sessions_purged_total",
		Help: "Expired sessions removed by the maintenance job.",
	})
)

func observeRequest(method, route string, status int) {
	if route == "" {
		route = "unknown"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

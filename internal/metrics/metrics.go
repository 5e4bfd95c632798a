package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satspoint_api_requests_total",
		Help: "API requests by method and path prefix.",
	}, []string{"method", "path"})

	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satspoint_auth_failures_total",
		Help: "Rejected NIP-98 authorization attempts.",
	})

	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satspoint_invoices_created_total",
		Help: "Invoices created through the API.",
	})

	PaymentsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satspoint_payments_settled_total",
		Help: "Payments observed settled via webhook or stream.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

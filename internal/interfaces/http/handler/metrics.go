package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler returns the Prometheus scrape handler for the
// default registry, which carries the analytics collectors.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}


package router

import (
	"net/http"
	"time"

	"customer-analytics-system/internal/interfaces/http/handler"
	"customer-analytics-system/internal/pkg/metrics"
)

// Router holds all HTTP handlers
type Router struct {
	mux              *http.ServeMux
	analyticsHandler *handler.AnalyticsHandler
	healthHandler    *handler.HealthHandler
	metricsPath      string
}

// NewRouter creates a new router with all routes configured.
// metricsPath may be empty to disable the metrics endpoint.
func NewRouter(
	analyticsHandler *handler.AnalyticsHandler,
	healthHandler *handler.HealthHandler,
	metricsPath string,
) *Router {
	r := &Router{
		mux:              http.NewServeMux(),
		analyticsHandler: analyticsHandler,
		healthHandler:    healthHandler,
		metricsPath:      metricsPath,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Health endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)
	r.mux.HandleFunc("GET /live", r.healthHandler.Live)

	// Dashboard overview
	r.handle("GET /api/v1/analytics/dashboard", "dashboard", r.analyticsHandler.Dashboard)

	// Segmentation breakdowns
	r.handle("GET /api/v1/analytics/regions", "regions", r.analyticsHandler.Regions)
	r.handle("GET /api/v1/analytics/segments", "segments", r.analyticsHandler.Segments)
	r.handle("GET /api/v1/analytics/categories", "categories", r.analyticsHandler.Categories)

	// Time-series diagnostics
	r.handle("GET /api/v1/analytics/timeseries", "timeseries", r.analyticsHandler.TimeSeries)

	// Customer deep dive
	r.handle("GET /api/v1/analytics/customers/{id}/peers", "peers", r.analyticsHandler.PeerComparison)
	r.handle("GET /api/v1/analytics/customers/{id}/simulation", "simulation", r.analyticsHandler.Simulation)

	// Alerts and forecasting
	r.handle("GET /api/v1/analytics/alerts", "alerts", r.analyticsHandler.RiskAlerts)
	r.handle("GET /api/v1/analytics/forecast", "forecast", r.analyticsHandler.Forecast)

	if r.metricsPath != "" {
		r.mux.Handle("GET "+r.metricsPath, handler.MetricsHandler())
	}
}

// handle registers an instrumented route.
func (r *Router) handle(pattern, endpoint string, fn http.HandlerFunc) {
	r.mux.HandleFunc(pattern, instrument(endpoint, fn))
}

// instrument records request count and latency per endpoint.
func instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, req)

		outcome := metrics.OutcomeSuccess
		if recorder.status >= http.StatusInternalServerError {
			outcome = metrics.OutcomeError
		}
		metrics.ObserveRequest(endpoint, time.Since(start), outcome)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// Handler returns the http.Handler
func (r *Router) Handler() http.Handler {
	return r
}

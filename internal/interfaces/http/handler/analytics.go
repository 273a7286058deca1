package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"customer-analytics-system/internal/application/analytics"
	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
	"customer-analytics-system/internal/pkg/metrics"
)

// dateLayout is the query-parameter date format for startDate/endDate.
const dateLayout = "2006-01-02"

// AnalyticsHandler handles the analytics dashboard HTTP requests
type AnalyticsHandler struct {
	dashboard    *analytics.DashboardUseCase
	distribution *analytics.DistributionUseCase
	timeSeries   *analytics.TimeSeriesUseCase
	peers        *analytics.PeerComparisonUseCase
	alerts       *analytics.RiskAlertUseCase
	forecast     *analytics.ForecastUseCase
	simulation   *analytics.SimulationUseCase

	filterDefaults anomaly.FilterParams
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	dashboard *analytics.DashboardUseCase,
	distribution *analytics.DistributionUseCase,
	timeSeries *analytics.TimeSeriesUseCase,
	peers *analytics.PeerComparisonUseCase,
	alerts *analytics.RiskAlertUseCase,
	forecast *analytics.ForecastUseCase,
	simulation *analytics.SimulationUseCase,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		dashboard:      dashboard,
		distribution:   distribution,
		timeSeries:     timeSeries,
		peers:          peers,
		alerts:         alerts,
		forecast:       forecast,
		simulation:     simulation,
		filterDefaults: anomaly.DefaultFilterParams(),
	}
}

// SetFilterDefaults overrides the implicit gates applied when a request
// specifies none. Out-of-domain values are ignored.
func (h *AnalyticsHandler) SetFilterDefaults(minScore float64, minSeverity anomaly.Severity) {
	if minScore >= 0 && minScore <= 1 {
		h.filterDefaults.MinScore = minScore
	}
	if minSeverity >= anomaly.SeverityLow && minSeverity <= anomaly.SeverityCritical {
		h.filterDefaults.MinSeverity = minSeverity
	}
}

// Dashboard handles GET /api/v1/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.dashboard.Execute(r.Context(), analytics.DashboardInput{
		Filter:    filter,
		DateRange: dateRange,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Dashboard computation failed: "+err.Error())
		return
	}

	metrics.SetAnomaliesDetected(len(result.Anomalies))
	writeJSON(w, http.StatusOK, result)
}

// Regions handles GET /api/v1/analytics/regions
func (h *AnalyticsHandler) Regions(w http.ResponseWriter, r *http.Request) {
	h.groupRates(w, r, h.distribution.Regions)
}

// Segments handles GET /api/v1/analytics/segments
func (h *AnalyticsHandler) Segments(w http.ResponseWriter, r *http.Request) {
	h.groupRates(w, r, h.distribution.Segments)
}

func (h *AnalyticsHandler) groupRates(
	w http.ResponseWriter,
	r *http.Request,
	breakdown func(ctx context.Context, input analytics.DistributionInput) ([]anomaly.GroupRate, error),
) {
	filter, err := h.parseFilterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rates, err := breakdown(r.Context(), analytics.DistributionInput{
		Filter:    filter,
		DateRange: dateRange,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Breakdown computation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups": rates,
		"count":  len(rates),
	})
}

// Categories handles GET /api/v1/analytics/categories
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.distribution.Categories(r.Context(), analytics.DistributionInput{
		Filter:    filter,
		DateRange: dateRange,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Category breakdown failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": items,
		"count":      len(items),
	})
}

// TimeSeries handles GET /api/v1/analytics/timeseries
func (h *AnalyticsHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	days, err := parseIntParam(r, "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := h.timeSeries.Execute(r.Context(), analytics.TimeSeriesInput{
		Days:       days,
		CustomerID: r.URL.Query().Get("customerId"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Time series computation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"series": series,
		"count":  len(series),
	})
}

// PeerComparison handles GET /api/v1/analytics/customers/{id}/peers
func (h *AnalyticsHandler) PeerComparison(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "Customer ID is required")
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.peers.Execute(r.Context(), customerID, dateRange)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, "Customer not found in current batch")
			return
		}
		writeError(w, http.StatusInternalServerError, "Peer comparison failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RiskAlerts handles GET /api/v1/analytics/alerts
func (h *AnalyticsHandler) RiskAlerts(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseIntParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.alerts.Execute(r.Context(), analytics.RiskAlertInput{
		Filter:    filter,
		DateRange: dateRange,
		Limit:     limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Alert ranking failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// Forecast handles GET /api/v1/analytics/forecast
func (h *AnalyticsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	top, err := parseIntParam(r, "top")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	forecasts, err := h.forecast.Execute(r.Context(), analytics.ForecastInput{
		Filter:    filter,
		DateRange: dateRange,
		Top:       top,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Forecast computation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"forecasts": forecasts,
		"count":     len(forecasts),
	})
}

// Simulation handles GET /api/v1/analytics/customers/{id}/simulation
func (h *AnalyticsHandler) Simulation(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "Customer ID is required")
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.simulation.Execute(r.Context(), customerID, dateRange)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, "Customer not found in current batch")
			return
		}
		writeError(w, http.StatusInternalServerError, "Simulation baseline failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseFilterParams builds the anomaly gates from query parameters.
// Unspecified gates fall back to the configured defaults; explicitly
// passing minScore=0&minSeverity=1 disables the gates.
func (h *AnalyticsHandler) parseFilterParams(r *http.Request) (anomaly.FilterParams, error) {
	params := h.filterDefaults
	q := r.URL.Query()

	if raw := q.Get("minScore"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			return params, badParamError("minScore")
		}
		params.MinScore = v
	}
	if raw := q.Get("minSeverity"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 5 {
			return params, badParamError("minSeverity")
		}
		params.MinSeverity = anomaly.Severity(v)
	}
	if raw := q.Get("severityLevels"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || v < 1 || v > 5 {
				return params, badParamError("severityLevels")
			}
			params.SeverityLevels = append(params.SeverityLevels, anomaly.Severity(v))
		}
	}
	if raw := q.Get("regions"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if region := strings.TrimSpace(part); region != "" {
				params.Regions = append(params.Regions, region)
			}
		}
	}

	return params, nil
}

// parseDateRange reads the optional startDate/endDate window.
func parseDateRange(r *http.Request) (customer.DateRange, error) {
	var dateRange customer.DateRange
	q := r.URL.Query()

	if raw := q.Get("startDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return dateRange, badParamError("startDate")
		}
		dateRange.Start = t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return dateRange, badParamError("endDate")
		}
		dateRange.End = t
	}
	if !dateRange.Start.IsZero() && !dateRange.End.IsZero() && dateRange.End.Before(dateRange.Start) {
		return dateRange, badParamError("endDate")
	}

	return dateRange, nil
}

// parseIntParam reads an optional positive integer query parameter.
// Missing returns 0 so use cases apply their defaults.
func parseIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, badParamError(name)
	}
	return v, nil
}

func badParamError(name string) error {
	return fmt.Errorf("invalid query parameter: %s", name)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

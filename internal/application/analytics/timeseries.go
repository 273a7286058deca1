package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

// defaultSeriesDays is the window used when the caller supplies none.
const defaultSeriesDays = 30

// TimeSeriesInput selects the diagnostics window. CustomerID narrows
// the series to one customer when non-empty.
type TimeSeriesInput struct {
	Days       int
	CustomerID string
}

// TimeSeriesUseCase builds the daily volume series with its
// population-over-time anomaly scores.
type TimeSeriesUseCase struct {
	repo        customer.MetricsRepository
	logger      zerolog.Logger
	now         func() time.Time
	defaultDays int
}

// NewTimeSeriesUseCase creates the time-series use case.
func NewTimeSeriesUseCase(repo customer.MetricsRepository, logger zerolog.Logger) *TimeSeriesUseCase {
	return &TimeSeriesUseCase{
		repo:        repo,
		logger:      logger,
		now:         time.Now,
		defaultDays: defaultSeriesDays,
	}
}

// SetDefaultDays overrides the window used when a request supplies no
// days parameter. Non-positive values are ignored.
func (uc *TimeSeriesUseCase) SetDefaultDays(days int) {
	if days > 0 {
		uc.defaultDays = days
	}
}

// Execute returns one row per calendar day over the window. Days with
// no data are zero-filled; an empty dataset yields an empty series.
func (uc *TimeSeriesUseCase) Execute(ctx context.Context, input TimeSeriesInput) ([]anomaly.TimeSeriesPoint, error) {
	days := input.Days
	if days <= 0 {
		days = uc.defaultDays
	}

	points, err := uc.repo.GetDailyTransactionSeries(ctx, days, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("fetch daily series: %w", err)
	}
	return anomaly.BuildTimeSeries(points, days, uc.now()), nil
}

package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

// DashboardInput carries the boundary filter parameters.
type DashboardInput struct {
	Filter    anomaly.FilterParams
	DateRange customer.DateRange
}

// DashboardOutput is the combined payload for the main dashboard view.
type DashboardOutput struct {
	Anomalies            []anomaly.DataPoint                `json:"anomalies"`
	SeverityDistribution []anomaly.SeverityDistributionItem `json:"severity_distribution"`
	FeatureContributions []anomaly.FeatureContribution      `json:"feature_contributions"`
	KPI                  anomaly.KPI                        `json:"kpi"`
	TotalCustomers       int                                `json:"total_customers"`
	GeneratedAt          time.Time                          `json:"generated_at"`
}

// DashboardUseCase produces the anomaly overview for the dashboard.
type DashboardUseCase struct {
	provider *SnapshotProvider
	logger   zerolog.Logger
}

// NewDashboardUseCase creates the dashboard use case.
func NewDashboardUseCase(provider *SnapshotProvider, logger zerolog.Logger) *DashboardUseCase {
	return &DashboardUseCase{provider: provider, logger: logger}
}

// Execute scores the current batch and aggregates the filtered anomaly
// set. An empty batch degrades to an empty, well-typed payload so the
// dashboard can render its empty state.
func (uc *DashboardUseCase) Execute(ctx context.Context, input DashboardInput) (*DashboardOutput, error) {
	snapshot, err := uc.provider.Take(ctx, input.DateRange)
	if err != nil {
		if errors.Is(err, customer.ErrEmptyBatch) {
			return emptyDashboard(), nil
		}
		return nil, err
	}

	filtered := anomaly.Filter(snapshot.Points, input.Filter)
	uc.logger.Debug().
		Int("total", len(snapshot.Points)).
		Int("filtered", len(filtered)).
		Msg("dashboard anomaly set computed")

	return &DashboardOutput{
		Anomalies:            filtered,
		SeverityDistribution: anomaly.SeverityDistribution(filtered),
		FeatureContributions: anomaly.FeatureContributions(filtered),
		KPI:                  anomaly.ComputeKPI(filtered, len(snapshot.Rows), snapshot.TakenAt),
		TotalCustomers:       len(snapshot.Rows),
		GeneratedAt:          snapshot.TakenAt,
	}, nil
}

func emptyDashboard() *DashboardOutput {
	return &DashboardOutput{
		Anomalies:            []anomaly.DataPoint{},
		SeverityDistribution: []anomaly.SeverityDistributionItem{},
		FeatureContributions: []anomaly.FeatureContribution{},
		KPI:                  anomaly.KPI{TopAnomalousFeature: "None", New24hIsApproximate: true},
		GeneratedAt:          time.Now(),
	}
}

package analytics

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

// defaultAlertLimit caps the alert list when the caller supplies none.
const defaultAlertLimit = 20

// RiskAlertInput carries the boundary filter parameters plus the list cap.
type RiskAlertInput struct {
	Filter    anomaly.FilterParams
	DateRange customer.DateRange
	Limit     int
}

// RiskAlertUseCase ranks the filtered anomalies into actionable alerts.
type RiskAlertUseCase struct {
	provider     *SnapshotProvider
	logger       zerolog.Logger
	defaultLimit int
}

// NewRiskAlertUseCase creates the risk alert use case.
func NewRiskAlertUseCase(provider *SnapshotProvider, logger zerolog.Logger) *RiskAlertUseCase {
	return &RiskAlertUseCase{
		provider:     provider,
		logger:       logger,
		defaultLimit: defaultAlertLimit,
	}
}

// SetDefaultLimit overrides the list cap used when a request supplies no
// limit. Non-positive values are ignored.
func (uc *RiskAlertUseCase) SetDefaultLimit(limit int) {
	if limit > 0 {
		uc.defaultLimit = limit
	}
}

// Execute returns alerts ordered by score×exposure.
func (uc *RiskAlertUseCase) Execute(ctx context.Context, input RiskAlertInput) ([]anomaly.RiskAlert, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = uc.defaultLimit
	}

	snapshot, err := uc.provider.Take(ctx, input.DateRange)
	if err != nil {
		if errors.Is(err, customer.ErrEmptyBatch) {
			return []anomaly.RiskAlert{}, nil
		}
		return nil, err
	}

	filtered := anomaly.Filter(snapshot.Points, input.Filter)
	return anomaly.RankRiskAlerts(filtered, limit), nil
}

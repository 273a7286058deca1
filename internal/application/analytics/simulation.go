package analytics

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

// SimulationUseCase exposes the baseline and a customer's feature
// snapshot so what-if clients can perturb inputs and re-score with the
// approximate threshold rules.
type SimulationUseCase struct {
	provider *SnapshotProvider
	logger   zerolog.Logger
}

// NewSimulationUseCase creates the simulation use case.
func NewSimulationUseCase(provider *SnapshotProvider, logger zerolog.Logger) *SimulationUseCase {
	return &SimulationUseCase{provider: provider, logger: logger}
}

// Execute returns the simulation payload. A customer absent from the
// batch (including an empty batch) returns customer.ErrCustomerNotFound.
func (uc *SimulationUseCase) Execute(ctx context.Context, customerID string, dateRange customer.DateRange) (*anomaly.SimulationBaseline, error) {
	snapshot, err := uc.provider.Take(ctx, dateRange)
	if err != nil {
		if errors.Is(err, customer.ErrEmptyBatch) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, err
	}

	row, ok := snapshot.Row(customerID)
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}

	currentScore := 0.0
	if dp, ok := snapshot.Point(customerID); ok {
		currentScore = dp.AnomalyScore
	}

	sim := anomaly.NewSimulationBaseline(row, snapshot.Baseline, currentScore)
	return &sim, nil
}

package analytics

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

// PeerComparisonOutput wraps the per-metric comparison for one customer.
type PeerComparisonOutput struct {
	CustomerID   string                   `json:"customer_id"`
	CustomerName string                   `json:"customer_name"`
	Segment      string                   `json:"segment"`
	PeerCount    int                      `json:"peer_count"`
	Metrics      []anomaly.ComparisonItem `json:"metrics"`
}

// PeerComparisonUseCase compares one customer against same-segment peers.
type PeerComparisonUseCase struct {
	provider *SnapshotProvider
	logger   zerolog.Logger
}

// NewPeerComparisonUseCase creates the peer comparison use case.
func NewPeerComparisonUseCase(provider *SnapshotProvider, logger zerolog.Logger) *PeerComparisonUseCase {
	return &PeerComparisonUseCase{provider: provider, logger: logger}
}

// Execute builds the comparison. A customer absent from the batch
// (including an empty batch) returns customer.ErrCustomerNotFound so
// deep-dive panels can render an empty state rather than failing the page.
func (uc *PeerComparisonUseCase) Execute(ctx context.Context, customerID string, dateRange customer.DateRange) (*PeerComparisonOutput, error) {
	snapshot, err := uc.provider.Take(ctx, dateRange)
	if err != nil {
		if errors.Is(err, customer.ErrEmptyBatch) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, err
	}

	target, ok := snapshot.Row(customerID)
	if !ok {
		uc.logger.Debug().Str("customer_id", customerID).Msg("peer comparison target not in batch")
		return nil, customer.ErrCustomerNotFound
	}

	peerCount := 0
	for _, row := range snapshot.Rows {
		if row.CustomerID != target.CustomerID && row.Segment == target.Segment {
			peerCount++
		}
	}

	return &PeerComparisonOutput{
		CustomerID:   target.CustomerID,
		CustomerName: target.CustomerName,
		Segment:      target.Segment,
		PeerCount:    peerCount,
		Metrics:      anomaly.ComparePeers(target, snapshot.Rows),
	}, nil
}

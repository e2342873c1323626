package ports

import (
	"context"

	"github.com/alejandrodnm/pdbot/internal/domain"
)

// Journal records ledger transitions for audit. The engine only ever
// appends — journal contents are never read back into the ledger, so a
// missing or failed journal cannot corrupt in-memory state.
type Journal interface {
	// RecordOpen records a newly opened position.
	RecordOpen(ctx context.Context, pos domain.Position) error

	// RecordPriceUpdate records a price change and the positions it touched,
	// including any that liquidated during the sweep.
	RecordPriceUpdate(ctx context.Context, marketID string, probability float64, updated []domain.Position) error

	// RecordSettlement records a market settlement and the finalized positions.
	RecordSettlement(ctx context.Context, market domain.Market, finalized []domain.Position) error

	// Close releases the underlying store.
	Close() error
}

package ports

import (
	"context"

	"github.com/alejandrodnm/pdbot/internal/domain"
)

// MarketProvider supplies candidate binary markets from an external
// prediction-market data source.
type MarketProvider interface {
	// FetchMarkets returns up to limit markets that passed the candidate
	// filter (active, not closed, exactly two outcomes, parsable YES
	// probability). Candidates failing the filter are skipped, never
	// surfaced as errors for the batch.
	FetchMarkets(ctx context.Context, limit int) ([]domain.Market, error)

	// FetchMarket returns the current quote for a single market by its
	// ledger ID. ok is false when the ID does not belong to this provider
	// or the market no longer passes the candidate filter.
	FetchMarket(ctx context.Context, id string) (m domain.Market, ok bool, err error)
}

package polymarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/pdbot/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	gammaPageSize    = 100
	gammaMaxPages    = 10
)

// FetchMarkets returns up to limit binary markets that pass the candidate
// filter, paginating through Gamma until the limit is reached or pages run
// out. Implements ports.MarketProvider.
func (c *Client) FetchMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	if limit <= 0 {
		limit = gammaPageSize
	}

	var markets []domain.Market
	totalSkipped := 0
	for page := 0; page < gammaMaxPages && len(markets) < limit; page++ {
		url := fmt.Sprintf("%s%s?active=true&closed=false&limit=%d&offset=%d",
			c.base, gammaMarketsPath, gammaPageSize, page*gammaPageSize)

		var raw []gammaMarket
		if err := c.get(ctx, url, &raw); err != nil {
			return nil, fmt.Errorf("polymarket.FetchMarkets: page %d: %w", page, err)
		}
		if len(raw) == 0 {
			break
		}

		mapped, skipped := mapCandidates(raw)
		totalSkipped += skipped
		markets = append(markets, mapped...)
	}

	if len(markets) > limit {
		markets = markets[:limit]
	}

	slog.Debug("gamma markets fetched",
		"markets", len(markets),
		"skipped", totalSkipped,
	)
	return markets, nil
}

// FetchMarket returns the current quote for a single market by its ledger
// ID. ok is false when the ID does not carry this provider's prefix, the
// market is gone from Gamma, or it no longer passes the candidate filter.
func (c *Client) FetchMarket(ctx context.Context, id string) (domain.Market, bool, error) {
	gammaID, hasPrefix := strings.CutPrefix(id, MarketIDPrefix)
	if !hasPrefix {
		return domain.Market{}, false, nil
	}

	url := fmt.Sprintf("%s%s/%s", c.base, gammaMarketsPath, gammaID)

	var raw gammaMarket
	if err := c.get(ctx, url, &raw); err != nil {
		if errors.Is(err, errNotFound) {
			return domain.Market{}, false, nil
		}
		return domain.Market{}, false, fmt.Errorf("polymarket.FetchMarket: %q: %w", id, err)
	}

	m, ok := mapCandidate(raw)
	if !ok {
		slog.Debug("gamma market rejected by filter", "market", id)
		return domain.Market{}, false, nil
	}
	return m, true, nil
}

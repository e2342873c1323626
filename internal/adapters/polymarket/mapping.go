package polymarket

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/alejandrodnm/pdbot/internal/domain"
)

// MarketIDPrefix marks ledger market IDs that came from this provider,
// avoiding collisions with locally created markets.
const MarketIDPrefix = "pm:"

// mapCandidate converts a Gamma DTO to a domain.Market. ok is false when the
// candidate fails the filter: inactive, closed, not exactly two outcomes, or
// an unparsable YES probability. A rejected candidate is skipped, never an
// error for the batch.
func mapCandidate(g gammaMarket) (domain.Market, bool) {
	if !g.Active || g.Closed {
		return domain.Market{}, false
	}
	if g.ID == "" {
		return domain.Market{}, false
	}

	var outcomes []string
	if err := json.Unmarshal([]byte(g.Outcomes), &outcomes); err != nil || len(outcomes) != 2 {
		return domain.Market{}, false
	}

	var prices []string
	if err := json.Unmarshal([]byte(g.OutcomePrices), &prices); err != nil || len(prices) != 2 {
		return domain.Market{}, false
	}

	p, err := strconv.ParseFloat(prices[0], 64)
	if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
		return domain.Market{}, false
	}

	return domain.Market{
		ID:          MarketIDPrefix + g.ID,
		Question:    g.Question,
		Probability: p,
		Status:      domain.MarketOpen,
	}, true
}

// mapCandidates filters and converts a batch. Returns how many were skipped.
func mapCandidates(raw []gammaMarket) (markets []domain.Market, skipped int) {
	for _, g := range raw {
		m, ok := mapCandidate(g)
		if !ok {
			skipped++
			continue
		}
		markets = append(markets, m)
	}
	return markets, skipped
}

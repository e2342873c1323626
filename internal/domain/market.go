package domain

import "time"

// MarketStatus represents the lifecycle of a binary prediction market.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketSettled MarketStatus = "SETTLED"
)

// Market is a binary prediction market tracked by the ledger.
// Probability is the current YES-probability in [0,1]. Outcome is set
// exactly when Status is SETTLED and never changes afterwards.
type Market struct {
	ID          string
	Question    string
	Probability float64
	Status      MarketStatus
	Outcome     *int // 0 or 1, nil while OPEN
	CreatedAt   time.Time
	SettledAt   *time.Time
}

// CurrentProbability returns the live probability while the market is open.
// Once settled the outcome is authoritative and pins the probability.
func (m Market) CurrentProbability() float64 {
	if m.Status == MarketSettled && m.Outcome != nil {
		return float64(*m.Outcome)
	}
	return m.Probability
}

// TruncateQuestion returns the market question truncated to maxLen characters.
// If the question is empty it falls back to the market ID.
func TruncateQuestion(question, marketID string, maxLen int) string {
	q := question
	if q == "" {
		if len(marketID) > 20 {
			q = marketID[:20] + "..."
		} else {
			q = marketID
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}

package polymarket

import (
	"encoding/json"
	"io"
)

// Raw DTOs from the Gamma API. Only used inside this package; conversion to
// domain entities happens in mapping.go.

// gammaMarket is a market candidate from GET /markets.
// Outcomes and OutcomePrices are double-encoded JSON arrays, e.g.
// "[\"Yes\", \"No\"]" and "[\"0.65\", \"0.35\"]" — index 0 is YES.
type gammaMarket struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	Active        bool   `json:"active"`
	Closed        bool   `json:"closed"`
	Outcomes      string `json:"outcomes"`
	OutcomePrices string `json:"outcomePrices"`
}

func decodeJSON(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/pdbot/internal/domain"
	"github.com/alejandrodnm/pdbot/internal/ports"
)

// Ledger is the single-writer store of markets and PD positions. Every
// mutation goes through one of its operations; no other code path writes
// ledger fields. Operations are synchronous state transitions — reads only
// ever observe states between completed transitions.
type Ledger struct {
	mu        sync.Mutex
	markets   map[string]*domain.Market
	positions map[string]*domain.Position
	// insertion order, for stable listings and deterministic sweeps
	marketOrder   []string
	positionOrder []string

	provider ports.MarketProvider
	journal  ports.Journal
}

// New creates an empty ledger. provider and journal may be nil: without a
// provider RefreshFromProvider and ImportMarkets are no-ops, without a
// journal transitions are simply not recorded.
func New(provider ports.MarketProvider, journal ports.Journal) *Ledger {
	return &Ledger{
		markets:   make(map[string]*domain.Market),
		positions: make(map[string]*domain.Position),
		provider:  provider,
		journal:   journal,
	}
}

// CreateMarket adds a locally defined market with the given starting
// YES-probability, clamped to [0,1].
func (l *Ledger) CreateMarket(question string, probability float64) domain.Market {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := &domain.Market{
		ID:          uuid.New().String(),
		Question:    question,
		Probability: domain.Clamp01(probability),
		Status:      domain.MarketOpen,
		CreatedAt:   time.Now().UTC(),
	}
	l.markets[m.ID] = m
	l.marketOrder = append(l.marketOrder, m.ID)

	slog.Debug("ledger: market created", "market", m.ID, "probability", m.Probability)
	return *m
}

// ImportMarkets pulls candidate markets from the provider and adds the ones
// not yet known to the ledger. Already tracked markets are left untouched —
// their quotes move only through price updates. Returns the newly added
// markets.
func (l *Ledger) ImportMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	if l.provider == nil {
		return nil, nil
	}

	candidates, err := l.provider.FetchMarkets(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("engine.ImportMarkets: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var added []domain.Market
	for _, c := range candidates {
		if _, exists := l.markets[c.ID]; exists {
			continue
		}
		m := c
		m.Status = domain.MarketOpen
		m.CreatedAt = time.Now().UTC()
		l.markets[m.ID] = &m
		l.marketOrder = append(l.marketOrder, m.ID)
		added = append(added, m)
	}

	slog.Info("ledger: markets imported", "candidates", len(candidates), "added", len(added))
	return added, nil
}

// OpenPosition opens a PD position on an OPEN market. The entry probability
// is snapshotted from the market; margin is fixed at notional*marginPct and
// never recomputed.
func (l *Ledger) OpenPosition(marketID string, side domain.Side, notional, marginPct float64) (domain.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !side.Valid() {
		return domain.Position{}, fmt.Errorf("engine.OpenPosition: side %q: must be LONG or SHORT", side)
	}
	if notional <= 0 {
		return domain.Position{}, fmt.Errorf("engine.OpenPosition: notional %v: %w", notional, domain.ErrInvalidNotional)
	}
	if marginPct <= 0 || marginPct > 1 {
		return domain.Position{}, fmt.Errorf("engine.OpenPosition: margin pct %v: %w", marginPct, domain.ErrInvalidMarginPct)
	}

	m, ok := l.markets[marketID]
	if !ok {
		return domain.Position{}, fmt.Errorf("engine.OpenPosition: %q: %w", marketID, domain.ErrMarketNotFound)
	}
	if m.Status != domain.MarketOpen {
		return domain.Position{}, fmt.Errorf("engine.OpenPosition: %q: %w", marketID, domain.ErrMarketNotOpen)
	}

	margin := notional * marginPct
	p := &domain.Position{
		ID:                 uuid.New().String(),
		MarketID:           marketID,
		Side:               side,
		Notional:           notional,
		MarginPct:          marginPct,
		MarginAmount:       margin,
		EntryProbability:   m.Probability,
		CurrentProbability: m.Probability,
		PnL:                0,
		Equity:             margin,
		Status:             domain.PositionOpen,
		OpenedAt:           time.Now().UTC(),
	}
	l.positions[p.ID] = p
	l.positionOrder = append(l.positionOrder, p.ID)

	l.record(func(ctx context.Context) error {
		return l.journal.RecordOpen(ctx, *p)
	})

	slog.Info("ledger: position opened",
		"position", p.ID,
		"market", marketID,
		"side", side,
		"notional", notional,
		"margin", margin,
		"entry_p", p.EntryProbability,
	)
	return *p, nil
}

// ApplyPriceUpdate moves a market's YES-probability and recomputes every
// OPEN position on it. The probability is clamped to [0,1] at this boundary.
// Positions whose equity depletes to the liquidation threshold transition to
// LIQUIDATED with pnl, equity and probability frozen at the values just
// computed. Non-OPEN positions are untouched. Returns the updated positions.
func (l *Ledger) ApplyPriceUpdate(marketID string, newProbability float64) ([]domain.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyPriceUpdateLocked(marketID, newProbability)
}

func (l *Ledger) applyPriceUpdateLocked(marketID string, newProbability float64) ([]domain.Position, error) {
	m, ok := l.markets[marketID]
	if !ok {
		return nil, fmt.Errorf("engine.ApplyPriceUpdate: %q: %w", marketID, domain.ErrMarketNotFound)
	}
	if m.Status != domain.MarketOpen {
		return nil, fmt.Errorf("engine.ApplyPriceUpdate: %q: %w", marketID, domain.ErrMarketNotOpen)
	}

	p := domain.Clamp01(newProbability)
	m.Probability = p

	var updated []domain.Position
	liquidated := 0
	for _, id := range l.positionOrder {
		pos := l.positions[id]
		if pos.MarketID != marketID || pos.Status != domain.PositionOpen {
			continue
		}

		pos.PnL = domain.PnL(pos.Notional, pos.EntryProbability, p, pos.Side)
		pos.Equity = domain.Equity(pos.MarginAmount, pos.PnL)
		pos.CurrentProbability = p

		if domain.Liquidated(pos.Equity, pos.MarginAmount) {
			now := time.Now().UTC()
			pos.ClosedAt = &now
			if err := pos.Transition(domain.PositionLiquidated); err != nil {
				return nil, fmt.Errorf("engine.ApplyPriceUpdate: %w", err)
			}
			liquidated++
			slog.Info("ledger: position liquidated",
				"position", pos.ID,
				"market", marketID,
				"equity", pos.Equity,
				"margin", pos.MarginAmount,
			)
		}
		updated = append(updated, *pos)
	}

	l.record(func(ctx context.Context) error {
		return l.journal.RecordPriceUpdate(ctx, marketID, p, updated)
	})

	slog.Debug("ledger: price update applied",
		"market", marketID,
		"probability", p,
		"positions", len(updated),
		"liquidated", liquidated,
	)
	return updated, nil
}

// SettleMarket finalizes an OPEN market with its true outcome (0 or 1) and
// sweeps every position on it:
//   - SETTLED positions are untouched (idempotent per position);
//   - LIQUIDATED positions become SETTLED keeping their frozen values;
//   - OPEN positions get a final pnl/equity computed with the outcome as the
//     current probability, skipping the liquidation rule — settlement always
//     wins over the liquidation check.
//
// A second settlement call on the same market is hard-rejected. Returns
// every position attached to the market after the sweep.
func (l *Ledger) SettleMarket(marketID string, outcome int) ([]domain.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if outcome != 0 && outcome != 1 {
		return nil, fmt.Errorf("engine.SettleMarket: outcome %d: %w", outcome, domain.ErrInvalidOutcome)
	}
	m, ok := l.markets[marketID]
	if !ok {
		return nil, fmt.Errorf("engine.SettleMarket: %q: %w", marketID, domain.ErrMarketNotFound)
	}
	if m.Status != domain.MarketOpen {
		return nil, fmt.Errorf("engine.SettleMarket: %q: %w", marketID, domain.ErrMarketNotOpen)
	}

	now := time.Now().UTC()
	m.Status = domain.MarketSettled
	m.Outcome = &outcome
	m.Probability = float64(outcome)
	m.SettledAt = &now

	finalP := float64(outcome)
	var finalized []domain.Position
	for _, id := range l.positionOrder {
		pos := l.positions[id]
		if pos.MarketID != marketID {
			continue
		}

		switch pos.Status {
		case domain.PositionSettled:
			// already final, keep as is
		case domain.PositionLiquidated:
			if err := pos.Transition(domain.PositionSettled); err != nil {
				return nil, fmt.Errorf("engine.SettleMarket: %w", err)
			}
		case domain.PositionOpen:
			pos.PnL = domain.PnL(pos.Notional, pos.EntryProbability, finalP, pos.Side)
			pos.Equity = domain.Equity(pos.MarginAmount, pos.PnL)
			pos.CurrentProbability = finalP
			pos.ClosedAt = &now
			if err := pos.Transition(domain.PositionSettled); err != nil {
				return nil, fmt.Errorf("engine.SettleMarket: %w", err)
			}
		}
		finalized = append(finalized, *pos)
	}

	l.record(func(ctx context.Context) error {
		return l.journal.RecordSettlement(ctx, *m, finalized)
	})

	slog.Info("ledger: market settled",
		"market", marketID,
		"outcome", outcome,
		"positions", len(finalized),
	)
	return finalized, nil
}

// RefreshFromProvider fetches the market's current quote and applies it as
// one atomic price update. A fetch failure or an unknown market produces no
// update — applied is false and the ledger is untouched.
func (l *Ledger) RefreshFromProvider(ctx context.Context, marketID string) (updated []domain.Position, applied bool, err error) {
	if l.provider == nil {
		return nil, false, nil
	}

	// The fetch happens outside the ledger; only its result enters as a
	// single transition.
	quote, ok, err := l.provider.FetchMarket(ctx, marketID)
	if err != nil {
		return nil, false, fmt.Errorf("engine.RefreshFromProvider: %q: %w", marketID, err)
	}
	if !ok {
		slog.Debug("ledger: refresh skipped, market not available", "market", marketID)
		return nil, false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	updated, err = l.applyPriceUpdateLocked(marketID, quote.Probability)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// Market returns a snapshot of the market with the given ID.
func (l *Ledger) Market(id string) (domain.Market, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.markets[id]
	if !ok {
		return domain.Market{}, false
	}
	return *m, true
}

// Markets returns snapshots of all markets in creation order.
func (l *Ledger) Markets() []domain.Market {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Market, 0, len(l.marketOrder))
	for _, id := range l.marketOrder {
		out = append(out, *l.markets[id])
	}
	return out
}

// Position returns a snapshot of the position with the given ID.
func (l *Ledger) Position(id string) (domain.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.positions[id]
	if !ok {
		return domain.Position{}, false
	}
	return *p, true
}

// Positions returns snapshots of all positions in open order.
func (l *Ledger) Positions() []domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Position, 0, len(l.positionOrder))
	for _, id := range l.positionOrder {
		out = append(out, *l.positions[id])
	}
	return out
}

// record runs a journal write if a journal is configured. Journal failures
// are logged, never propagated — the in-memory transition already happened
// and audit writes must not undo it.
func (l *Ledger) record(fn func(ctx context.Context) error) {
	if l.journal == nil {
		return
	}
	if err := fn(context.Background()); err != nil {
		slog.Warn("ledger: journal write failed", "err", err)
	}
}

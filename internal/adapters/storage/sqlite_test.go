package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pdbot/internal/domain"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func testPosition(id string, status domain.PositionStatus) domain.Position {
	return domain.Position{
		ID:                 id,
		MarketID:           "m1",
		Side:               domain.SideLong,
		Notional:           1000,
		MarginPct:          0.10,
		MarginAmount:       100,
		EntryProbability:   0.50,
		CurrentProbability: 0.50,
		Equity:             100,
		Status:             status,
	}
}

func TestJournal_RecordsEventsInOrder(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	pos := testPosition("p1", domain.PositionOpen)
	require.NoError(t, j.RecordOpen(ctx, pos))

	pos.CurrentProbability = 0.60
	pos.PnL = 100
	pos.Equity = 200
	require.NoError(t, j.RecordPriceUpdate(ctx, "m1", 0.60, []domain.Position{pos}))

	one := 1
	market := domain.Market{ID: "m1", Status: domain.MarketSettled, Outcome: &one}
	pos.Status = domain.PositionSettled
	pos.CurrentProbability = 1.0
	require.NoError(t, j.RecordSettlement(ctx, market, []domain.Position{pos}))

	events, err := j.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, EventSettlement, events[0].Kind)
	assert.Equal(t, EventPriceUpdate, events[1].Kind)
	assert.Equal(t, EventOpen, events[2].Kind)

	require.NotNil(t, events[0].Outcome)
	assert.Equal(t, 1, *events[0].Outcome)
	require.NotNil(t, events[1].Probability)
	assert.InDelta(t, 0.60, *events[1].Probability, 1e-9)
}

func TestJournal_PositionHistory(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	pos := testPosition("p1", domain.PositionOpen)
	require.NoError(t, j.RecordOpen(ctx, pos))

	pos.CurrentProbability = 0.40
	pos.PnL = -100
	pos.Equity = 0
	pos.Status = domain.PositionLiquidated
	require.NoError(t, j.RecordPriceUpdate(ctx, "m1", 0.40, []domain.Position{pos}))

	history, err := j.PositionHistory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, domain.PositionOpen, history[0].Status)
	assert.Equal(t, domain.PositionLiquidated, history[1].Status)
	assert.InDelta(t, -100.0, history[1].PnL, 1e-9)
	assert.InDelta(t, 0.10, history[1].MarginPct, 1e-9)

	// Unknown position → empty history, no error.
	history, err = j.PositionHistory(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, history)
}

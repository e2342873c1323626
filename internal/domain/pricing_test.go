package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPnL_Identity(t *testing.T) {
	cases := []struct {
		name     string
		notional float64
		entryP   float64
		currentP float64
		side     Side
		want     float64
	}{
		{"long gains when probability rises", 1000, 0.50, 0.60, SideLong, 100},
		{"long loses when probability falls", 1000, 0.50, 0.40, SideLong, -100},
		{"short gains when probability falls", 1000, 0.50, 0.40, SideShort, 100},
		{"short loses when probability rises", 1000, 0.50, 0.60, SideShort, -100},
		{"flat move is zero", 1000, 0.50, 0.50, SideLong, 0},
		{"full move to outcome 1", 500000, 0.41, 1.0, SideShort, -295000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PnL(tc.notional, tc.entryP, tc.currentP, tc.side)
			assert.InDelta(t, tc.want, got, 1e-6)
		})
	}
}

func TestEquity_NoFloor(t *testing.T) {
	// Equity may go negative — settlement keeps the raw value.
	assert.InDelta(t, -245000.0, Equity(50000, -295000), 1e-9)
	assert.InDelta(t, 150.0, Equity(100, 50), 1e-9)
}

func TestLiquidated_ThresholdIsInclusive(t *testing.T) {
	margin := 100000.0
	threshold := LiquidationThreshold * margin // 5000

	assert.False(t, Liquidated(threshold+0.01, margin), "just above threshold stays open")
	assert.True(t, Liquidated(threshold, margin), "exactly at threshold liquidates")
	assert.True(t, Liquidated(0, margin))
	assert.True(t, Liquidated(-1, margin))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.35, Clamp01(0.35))
}

func TestSide_Sign(t *testing.T) {
	assert.Equal(t, 1.0, SideLong.Sign())
	assert.Equal(t, -1.0, SideShort.Sign())
}

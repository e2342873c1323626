package domain

// LiquidationThreshold is the fraction of initial margin at or below which
// a position's equity forces automatic liquidation. System-wide, not
// configurable per market or position.
const LiquidationThreshold = 0.05

// PnL is the PD payoff: notional times the probability move, signed by side.
// Pure and total — entryP and currentP are expected in [0,1] but the
// function does not validate range; callers own the clamp.
func PnL(notional, entryP, currentP float64, side Side) float64 {
	return notional * (currentP - entryP) * side.Sign()
}

// Equity is margin plus accrued P&L. No floor — it may go negative once a
// position has already been frozen by liquidation or finalized at settlement.
func Equity(marginAmount, pnl float64) float64 {
	return marginAmount + pnl
}

// Liquidated reports whether equity has depleted to the liquidation
// threshold. Evaluated only for OPEN positions, right after a recompute.
func Liquidated(equity, marginAmount float64) bool {
	return equity <= LiquidationThreshold*marginAmount
}

// Clamp01 clamps a probability to [0,1].
func Clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

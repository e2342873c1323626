package domain

import (
	"fmt"
	"time"
)

// Side is the direction of a PD position. LONG profits when the market's
// YES-probability rises, SHORT when it falls.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Sign returns +1 for LONG and -1 for SHORT.
func (s Side) Sign() float64 {
	if s == SideShort {
		return -1
	}
	return 1
}

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// PositionStatus represents the lifecycle of a PD position.
type PositionStatus string

const (
	PositionOpen       PositionStatus = "OPEN"
	PositionLiquidated PositionStatus = "LIQUIDATED"
	PositionSettled    PositionStatus = "SETTLED"
)

// positionTransitions is the closed transition table:
// OPEN -> LIQUIDATED, OPEN -> SETTLED, LIQUIDATED -> SETTLED.
// Nothing leaves SETTLED.
var positionTransitions = map[PositionStatus]map[PositionStatus]bool{
	PositionOpen:       {PositionLiquidated: true, PositionSettled: true},
	PositionLiquidated: {PositionSettled: true},
	PositionSettled:    {},
}

// CanTransitionTo reports whether the status may move to the given one.
func (s PositionStatus) CanTransitionTo(to PositionStatus) bool {
	return positionTransitions[s][to]
}

// Position is a PD derivative written against a market's YES-probability.
//
// Notional, MarginPct, MarginAmount and EntryProbability are fixed at open.
// PnL, Equity and CurrentProbability track the market while the position is
// OPEN and are frozen at their last computed values once it is not.
type Position struct {
	ID                 string
	MarketID           string
	Side               Side
	Notional           float64
	MarginPct          float64
	MarginAmount       float64
	EntryProbability   float64
	CurrentProbability float64
	PnL                float64
	Equity             float64
	Status             PositionStatus
	OpenedAt           time.Time
	ClosedAt           *time.Time // liquidation or settlement time
}

// Transition moves the position to the given status, enforcing the
// transition table.
func (p *Position) Transition(to PositionStatus) error {
	if !p.Status.CanTransitionTo(to) {
		return fmt.Errorf("position %s: invalid transition %s -> %s", p.ID, p.Status, to)
	}
	p.Status = to
	return nil
}

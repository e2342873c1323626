package domain

import "errors"

// Validation rejections surfaced to the caller. All of them are non-fatal:
// the ledger rejects the command and keeps its state untouched.
var (
	ErrMarketNotFound   = errors.New("market not found")
	ErrMarketNotOpen    = errors.New("market is not open")
	ErrInvalidNotional  = errors.New("notional must be positive")
	ErrInvalidMarginPct = errors.New("margin pct must be in (0,1]")
	ErrInvalidOutcome   = errors.New("outcome must be 0 or 1")
)

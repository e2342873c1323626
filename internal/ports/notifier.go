package ports

import (
	"context"

	"github.com/alejandrodnm/pdbot/internal/domain"
)

// Notifier presents the current position book to the user.
type Notifier interface {
	// NotifyBook renders the markets and positions after a ledger pass.
	// In the console implementation this prints a formatted table.
	NotifyBook(ctx context.Context, markets []domain.Market, positions []domain.Position) error
}

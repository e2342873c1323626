package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/pdbot/internal/domain"
)

// Console implements ports.Notifier by printing the position book.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole creates a notifier that writes to stdout.
// With table=true it prints the full position table, otherwise a compact
// one-line summary per pass.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyBook prints the current markets and positions in the configured mode.
func (c *Console) NotifyBook(_ context.Context, markets []domain.Market, positions []domain.Position) error {
	if c.table {
		c.printFull(markets, positions)
	} else {
		c.printCompact(markets, positions)
	}
	return nil
}

// printCompact prints the essentials in one line.
func (c *Console) printCompact(markets []domain.Market, positions []domain.Position) {
	now := time.Now().Format("15:04:05")
	open, liquidated, settled := countByStatus(positions)

	var totalEquity, totalPnL float64
	for _, p := range positions {
		totalEquity += p.Equity
		totalPnL += p.PnL
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d mkts %d pos → open:%d liq:%d set:%d | pnl $%.2f equity $%.2f",
		now, len(markets), len(positions), open, liquidated, settled, totalPnL, totalEquity)

	fmt.Fprintln(c.out, sb.String())
}

// printFull prints the market list and the position table.
func (c *Console) printFull(markets []domain.Market, positions []domain.Position) {
	now := time.Now().Format("15:04:05")
	open, liquidated, settled := countByStatus(positions)

	fmt.Fprintf(c.out, "\n[%s] %d markets, %d positions — open:%d liq:%d set:%d\n",
		now, len(markets), len(positions), open, liquidated, settled)

	questions := make(map[string]string, len(markets))
	for _, m := range markets {
		questions[m.ID] = m.Question
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Position", "Market", "Side", "Notional", "Entry", "Current", "P&L", "Equity", "Status")

	for i, p := range positions {
		label := domain.TruncateQuestion(questions[p.MarketID], p.MarketID, 32)
		table.Append(
			fmt.Sprintf("%d", i+1),
			shortID(p.ID),
			label,
			string(p.Side),
			fmt.Sprintf("$%.0f", p.Notional),
			fmt.Sprintf("%.4f", p.EntryProbability),
			fmt.Sprintf("%.4f", p.CurrentProbability),
			fmt.Sprintf("$%.2f", p.PnL),
			fmt.Sprintf("$%.2f", p.Equity),
			string(p.Status),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Entry/Current = YES-probability | Equity = margin + P&L")
	fmt.Fprintln(c.out, "  LIQUIDATED/SETTLED rows show values frozen at close")
}

func countByStatus(positions []domain.Position) (open, liquidated, settled int) {
	for _, p := range positions {
		switch p.Status {
		case domain.PositionOpen:
			open++
		case domain.PositionLiquidated:
			liquidated++
		case domain.PositionSettled:
			settled++
		}
	}
	return
}

// shortID truncates a UUID to its first segment for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alejandrodnm/pdbot/config"
	"github.com/alejandrodnm/pdbot/internal/adapters/notify"
	"github.com/alejandrodnm/pdbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/pdbot/internal/adapters/storage"
	"github.com/alejandrodnm/pdbot/internal/application/engine"
	"github.com/alejandrodnm/pdbot/internal/domain"
	"github.com/alejandrodnm/pdbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one refresh pass and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print the full position table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("pdbot starting",
		"config", *configPath,
		"interval", cfg.RefreshInterval(),
		"once", *once,
	)

	client := polymarket.NewClient(cfg.API.GammaBase)

	var journal ports.Journal
	if cfg.Storage.DSN != "" {
		j, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer j.Close()
		journal = j
	}

	ledger := engine.New(client, journal)
	notifier := notify.NewConsole(*table)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	seedFromConfig(ledger, cfg.Markets)

	if _, err := ledger.ImportMarkets(ctx, cfg.Engine.ImportLimit); err != nil {
		// Provider unavailability is recoverable: the engine keeps running
		// on locally seeded markets and manual overrides.
		slog.Warn("market import failed, continuing with local markets", "err", err)
	}

	if err := run(ctx, ledger, notifier, cfg.RefreshInterval(), *once); err != nil {
		slog.Error("pdbot exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("pdbot stopped cleanly")
}

// seedFromConfig creates the locally defined markets and opens their
// positions through the ledger API.
func seedFromConfig(ledger *engine.Ledger, markets []config.MarketConfig) {
	for _, mc := range markets {
		m := ledger.CreateMarket(mc.Question, mc.Probability)
		for _, pc := range mc.Positions {
			side := domain.Side(strings.ToUpper(pc.Side))
			if _, err := ledger.OpenPosition(m.ID, side, pc.Notional, pc.MarginPct); err != nil {
				slog.Warn("seed position rejected",
					"market", m.ID, "side", pc.Side, "err", err)
			}
		}
	}
}

// run executes refresh passes until the context is cancelled.
func run(ctx context.Context, ledger *engine.Ledger, notifier ports.Notifier, interval time.Duration, once bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		refreshAll(ctx, ledger)
		if err := notifier.NotifyBook(ctx, ledger.Markets(), ledger.Positions()); err != nil {
			slog.Warn("notifier error", "err", err)
		}

		if once {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// refreshAll pulls a fresh quote for every open provider-backed market.
// Each refresh is one atomic price update; failures skip the market.
func refreshAll(ctx context.Context, ledger *engine.Ledger) {
	refreshed, skipped := 0, 0
	for _, m := range ledger.Markets() {
		if m.Status != domain.MarketOpen {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		_, applied, err := ledger.RefreshFromProvider(ctx, m.ID)
		if err != nil {
			slog.Warn("refresh failed", "market", m.ID, "err", err)
			skipped++
			continue
		}
		if applied {
			refreshed++
		}
	}
	slog.Debug("refresh pass complete", "refreshed", refreshed, "skipped", skipped)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

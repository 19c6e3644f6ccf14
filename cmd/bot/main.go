package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivanoskov/finance_tracker/internal/app"
	"github.com/ivanoskov/finance_tracker/internal/bot"
	"github.com/ivanoskov/finance_tracker/internal/config"
	"github.com/ivanoskov/finance_tracker/internal/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	log.SetDefault(logger)

	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var account bot.Account
	if a.Remote != nil {
		account = a.Account
	}
	b, err := bot.NewBot(cfg.TelegramToken, bot.Deps{
		Store:          a.Store,
		Device:         a.Local,
		Demo:           a.Demo,
		Account:        account,
		Charts:         a.Charts,
		CurrencySymbol: cfg.CurrencySymbol,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	if err := b.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ivanoskov/finance_tracker/internal/app"
	"github.com/ivanoskov/finance_tracker/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(func(ctx context.Context) (*app.App, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		// stdout оставляем для вывода команд
		cfg.LogLevel = "warn"
		return app.New(ctx, cfg, app.NewLogger(cfg))
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

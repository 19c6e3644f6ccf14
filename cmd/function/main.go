package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/ivanoskov/finance_tracker/internal/app"
	"github.com/ivanoskov/finance_tracker/internal/bot"
	"github.com/ivanoskov/finance_tracker/internal/config"
	"github.com/ivanoskov/finance_tracker/internal/log"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body string `json:"body"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler обрабатывает одно webhook-обновление Telegram за вызов
func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}
	logger := app.NewLogger(cfg)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return errorResponse(err)
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
		return errorResponse(err)
	}

	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		logger.ErrorContext(ctx, "Webhook update failed", "error", err)
		return errorResponse(err)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

// main - точка входа для локального тестирования, обработчик поднимается на HTTP
func main() {
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	logger := log.New(log.DefaultConfig())

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, _ := Handler(r.Context(), Request{Body: string(body)})
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	})

	logger.Info("Webhook handler listening", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

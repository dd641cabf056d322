// Package app provides the application bootstrap: it wires config into the
// translation and search clients, the bot, and the health server.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/neuroforge/telegram-morph-bot/internal/bot"
	"github.com/neuroforge/telegram-morph-bot/internal/platform/config"
	"github.com/neuroforge/telegram-morph-bot/internal/platform/observability"
	"github.com/neuroforge/telegram-morph-bot/internal/recon"
	"github.com/neuroforge/telegram-morph-bot/internal/translate"
)

const errBotInit = "bot initialization failed: %w"

// App holds the application dependencies.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

// New creates a new App instance.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunBot constructs the upstream clients and runs the bot until the context
// is canceled.
func (a *App) RunBot(ctx context.Context) error {
	translator := translate.New(translate.Config{
		BaseURL: a.cfg.LibreTranslateURL,
		Timeout: a.cfg.TranslateTimeout,
		RPS:     a.cfg.TranslateRPS,
	}, a.logger)

	search := recon.New(recon.Config{
		BaseURL: a.cfg.ShodanBaseURL,
		APIKey:  a.cfg.ShodanAPIKey,
		Limit:   a.cfg.SearchLimit,
		Timeout: a.cfg.SearchTimeout,
	}, a.logger)

	b, err := bot.New(a.cfg, translator, search, a.logger)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	return b.Run(ctx)
}

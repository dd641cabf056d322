// Package bot wires the Telegram update loop to the morph pipeline and the
// browse flow.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/neuroforge/telegram-morph-bot/internal/browse"
	"github.com/neuroforge/telegram-morph-bot/internal/morph"
	"github.com/neuroforge/telegram-morph-bot/internal/platform/config"
	"github.com/neuroforge/telegram-morph-bot/internal/platform/worker"
	"github.com/neuroforge/telegram-morph-bot/internal/recon"
	"github.com/neuroforge/telegram-morph-bot/internal/translate"
)

const (
	updateTimeout  = 60
	reaperInterval = time.Second
	reaperName     = "session-reaper"
)

// Callback data prefixes and actions.
const (
	CallbackPrefixBrowse = "browse:"
	CallbackActionRetry  = "retry"
	CallbackActionDead   = "dead"

	callbackPartsRetry = 3
)

// Log field names.
const (
	LogFieldUserID    = "user_id"
	LogFieldChatID    = "chat_id"
	LogFieldSessionID = "session_id"
	LogFieldQuery     = "query"
	logFieldCommand   = "command"
)

// Button labels.
const (
	ButtonRetry        = "🎲 Retry"
	ButtonSessionEnded = "⏹ Session ended"
	ButtonOpenHost     = "Open in Shodan"
)

// User-facing alert texts.
const (
	alertNotOwner     = "Only the original requester can use this button."
	alertSessionEnded = "This session has ended."
	alertExpired      = "This session has expired. Run the search again."
)

// Translator performs one translation call, surfacing upstream failures.
type Translator interface {
	Do(ctx context.Context, text, target string) (string, error)
}

// Searcher runs host searches against the recon upstream.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, query string) ([]recon.Match, error)
}

type Bot struct {
	cfg        *config.Config
	api        *tgbotapi.BotAPI
	modes      *morph.Registry
	pipeline   *morph.Pipeline
	translator Translator
	search     Searcher
	sessions   *browse.Manager
	logger     *zerolog.Logger
}

func New(cfg *config.Config, translator *translate.Client, search *recon.Client, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	b := &Bot{
		cfg:        cfg,
		api:        api,
		modes:      morph.NewRegistry(),
		translator: translator,
		search:     search,
		sessions:   browse.NewManager(cfg.BrowseSessionTTL),
		logger:     logger,
	}

	// The bot is its own message editor: pipeline edits land back on the
	// chat platform and re-enter the pipeline as edit events.
	b.pipeline = morph.NewPipeline(b.modes, translator, b, logger)

	return b, nil
}

func (b *Bot) Run(ctx context.Context) error {
	go func() {
		if err := worker.TickerLoop(ctx, worker.TickerConfig{
			Name:     reaperName,
			Interval: reaperInterval,
			OnTick:   b.expireSessions,
			Logger:   b.logger,
		}); err != nil {
			b.logger.Debug().Err(err).Msg("session reaper stopped")
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update := <-updates:
			// Searches and translation fan-out can take seconds; one slow
			// command must not stall the loop.
			go b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)

		return
	}

	if update.Message == nil {
		return
	}

	b.handleMessage(ctx, update.Message)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	b.logger.Info().Str(logFieldCommand, msg.Command()).Int64(LogFieldUserID, msg.From.ID).Msg("Handling command")

	registry := b.newCommandRegistry()
	if !registry.route(ctx, msg) {
		b.replySilent(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := query.Data
	if !strings.HasPrefix(data, CallbackPrefixBrowse) {
		return
	}

	parts := strings.Split(data, ":")

	switch {
	case len(parts) == callbackPartsRetry && parts[1] == CallbackActionRetry:
		b.handleRetryCallback(ctx, query, parts[2])
	case parts[1] == CallbackActionDead:
		b.answerAlert(query.ID, alertSessionEnded)
	}
}

// EditMessage applies a rewritten message in place and feeds the result back
// into the pipeline, where the loop guard terminates the cycle.
func (b *Bot) EditMessage(ctx context.Context, channelID int64, messageID int, msg morph.Message) error {
	edit := tgbotapi.NewEditMessageText(channelID, messageID, renderCardHTML(msg))
	edit.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("edit message %d in chat %d: %w", messageID, channelID, err)
	}

	b.pipeline.OnBotMessage(ctx, channelID, messageID, msg)

	return nil
}

// sendCard posts a card and runs it through the morph pipeline, like any
// other message the bot authors.
func (b *Bot) sendCard(ctx context.Context, chatID int64, card morph.Message) (int, error) {
	msgID, err := b.sendCardSilent(chatID, card)
	if err != nil {
		return 0, err
	}

	b.pipeline.OnBotMessage(ctx, chatID, msgID, card)

	return msgID, nil
}

// sendCardSilent posts a card without triggering transformation. Used for
// mode-toggle confirmations and transient placeholders, which must render
// verbatim.
func (b *Bot) sendCardSilent(chatID int64, card morph.Message) (int, error) {
	msg := tgbotapi.NewMessage(chatID, renderCardHTML(card))
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send card to chat %d: %w", chatID, err)
	}

	return sent.MessageID, nil
}

// editCard rewrites an existing card and hands it to the pipeline.
func (b *Bot) editCard(ctx context.Context, chatID int64, messageID int, card morph.Message) {
	if err := b.editCardSilent(chatID, messageID, card); err != nil {
		b.logger.Warn().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to edit card")

		return
	}

	b.pipeline.OnBotMessage(ctx, chatID, messageID, card)
}

func (b *Bot) editCardSilent(chatID int64, messageID int, card morph.Message) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, renderCardHTML(card))
	edit.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("edit card %d in chat %d: %w", messageID, chatID, err)
	}

	return nil
}

func (b *Bot) replySilent(chatID int64, text string) {
	if _, err := b.sendCardSilent(chatID, morph.Message{Body: text}); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to send reply")
	}
}

func (b *Bot) answerAlert(queryID, text string) {
	callback := tgbotapi.NewCallbackWithAlert(queryID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error().Err(err).Msg("failed to send callback response")
	}
}

func (b *Bot) answerAck(queryID string) {
	callback := tgbotapi.NewCallback(queryID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error().Err(err).Msg("failed to send callback response")
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/neuroforge/telegram-morph-bot/internal/browse"
	"github.com/neuroforge/telegram-morph-bot/internal/morph"
	"github.com/neuroforge/telegram-morph-bot/internal/recon"
)

const (
	screenshotFilter = "has_screenshot:true"

	shodanUsage      = "Usage: /shodan <city>"
	shodanQueryUsage = "Usage: /shodan_query <query> (must include " + screenshotFilter + ")"

	searchingText     = "Searching…"
	searchNotSetText  = "Search is not configured: no API key set."
	searchDownText    = "Search service unreachable."
	searchFailFmt     = "Search failed (status %d): %s"
	noResultsText     = "No results."
	noScreenshotsText = "Results found, but none included screenshot data."
	exhaustedText     = "No more unique results left for retry."
	retryFailedText   = "Retry failed. Try again."

	defaultFileHint = "custom"
)

// handleShodan browses hosts with screenshots in a city.
func (b *Bot) handleShodan(ctx context.Context, msg *tgbotapi.Message) {
	city := strings.TrimSpace(msg.CommandArguments())
	if city == "" {
		b.replySilent(msg.Chat.ID, shodanUsage)

		return
	}

	b.runSearch(ctx, msg, cityQuery(city), city)
}

// handleShodanQuery browses hosts for a raw upstream query. The screenshot
// filter is required up front since the card format is image-led; a query
// without it is refused before any network call.
func (b *Bot) handleShodanQuery(ctx context.Context, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if !browsableQuery(query) {
		b.replySilent(msg.Chat.ID, shodanQueryUsage)

		return
	}

	b.runSearch(ctx, msg, query, "")
}

func cityQuery(city string) string {
	return fmt.Sprintf("city:%q %s", city, screenshotFilter)
}

// browsableQuery requires the screenshot filter so every match can render as
// a card.
func browsableQuery(query string) bool {
	return query != "" && strings.Contains(query, screenshotFilter)
}

func (b *Bot) runSearch(ctx context.Context, msg *tgbotapi.Message, query, hint string) {
	chatID := msg.Chat.ID

	if !b.search.Configured() {
		b.replySilent(chatID, searchNotSetText)

		return
	}

	placeholderID, err := b.sendCardSilent(chatID, morph.Message{Body: searchingText})
	if err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to send placeholder")

		return
	}

	matches, err := b.search.Search(ctx, query)
	if err != nil {
		b.editCard(ctx, chatID, placeholderID, morph.Message{Body: searchFailureText(err)})

		return
	}

	if len(matches) == 0 {
		b.editCard(ctx, chatID, placeholderID, morph.Message{Body: noResultsText})

		return
	}

	pool := browse.NewPool(query, matches)
	if pool.Size() == 0 {
		b.editCard(ctx, chatID, placeholderID, morph.Message{Body: noScreenshotsText})

		return
	}

	sess := b.sessions.Create(chatID, msg.From.ID, pool)

	// The seed card is itself a random draw and counts against the pool.
	item, err := sess.Sampler.Draw()
	if err != nil {
		b.editCard(ctx, chatID, placeholderID, morph.Message{Body: noResultsText})

		return
	}

	b.deleteMessage(chatID, placeholderID)

	messageID, err := b.sendResultPhoto(chatID, sess.ID, item, hint)
	if err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, chatID).Str(LogFieldQuery, query).Msg("failed to send result card")

		return
	}

	b.sessions.Bind(sess.ID, messageID)
	b.logger.Info().
		Int64(LogFieldChatID, chatID).
		Str(LogFieldSessionID, sess.ID).
		Int("pool_size", pool.Size()).
		Msg("browse session started")
}

func searchFailureText(err error) string {
	var apiErr *recon.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf(searchFailFmt, apiErr.Status, apiErr.Message)
	}

	return searchDownText
}

func (b *Bot) handleRetryCallback(_ context.Context, query *tgbotapi.CallbackQuery, sessionID string) {
	item, sess, err := b.sessions.Retry(sessionID, query.From.ID)

	switch {
	case errors.Is(err, browse.ErrUnauthorized):
		b.answerAlert(query.ID, alertNotOwner)

		return
	case errors.Is(err, browse.ErrExpired):
		b.answerAlert(query.ID, alertExpired)

		return
	case errors.Is(err, browse.ErrExhausted):
		b.renderExhausted(sess)
		b.answerAck(query.ID)

		return
	case err != nil:
		b.logger.Error().Err(err).Str(LogFieldSessionID, sessionID).Msg("retry failed")
		b.answerAlert(query.ID, retryFailedText)

		return
	}

	if err := b.editResultPhoto(sess, item); err != nil {
		b.logger.Warn().Err(err).Str(LogFieldSessionID, sess.ID).Msg("failed to swap result card")
	}

	b.answerAck(query.ID)
}

// renderExhausted retires the card after the last unique result. The link
// button for the final item stays usable; only the retry action dies.
func (b *Bot) renderExhausted(sess *browse.Session) {
	item, ok := sess.Sampler.Current()
	if !ok {
		return
	}

	caption := renderResultCaption(item) + "\n\n<i>" + exhaustedText + "</i>"
	keyboard := buildBrowseKeyboard(sess.ID, item, false)

	edit := tgbotapi.NewEditMessageCaption(sess.ChatID, sess.MessageID, caption)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = &keyboard

	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn().Err(err).Str(LogFieldSessionID, sess.ID).Msg("failed to retire result card")
	}
}

// sendResultPhoto posts a result card: screenshot, caption, retry keyboard.
// Result cards stay off the morph path so a retry cannot clobber a
// transformation mid-edit.
func (b *Bot) sendResultPhoto(chatID int64, sessionID string, item recon.ResultItem, hint string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  resultFileName(item, hint),
		Bytes: item.Image,
	})
	photo.Caption = renderResultCaption(item)
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyMarkup = buildBrowseKeyboard(sessionID, item, true)

	sent, err := b.api.Send(photo)
	if err != nil {
		return 0, fmt.Errorf("send result photo to chat %d: %w", chatID, err)
	}

	return sent.MessageID, nil
}

// editResultPhoto swaps the card in place for the next drawn item.
func (b *Bot) editResultPhoto(sess *browse.Session, item recon.ResultItem) error {
	media := tgbotapi.NewInputMediaPhoto(tgbotapi.FileBytes{
		Name:  resultFileName(item, ""),
		Bytes: item.Image,
	})
	media.Caption = renderResultCaption(item)
	media.ParseMode = tgbotapi.ModeHTML

	keyboard := buildBrowseKeyboard(sess.ID, item, true)

	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      sess.ChatID,
			MessageID:   sess.MessageID,
			ReplyMarkup: &keyboard,
		},
		Media: media,
	}

	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("edit result photo %d in chat %d: %w", sess.MessageID, sess.ChatID, err)
	}

	return nil
}

// expireSessions retires the keyboards of sessions past their inactivity
// deadline. Runs on the reaper tick.
func (b *Bot) expireSessions(_ context.Context) {
	for _, sess := range b.sessions.ExpireDue() {
		item, ok := sess.Sampler.Current()
		if !ok || sess.MessageID == 0 {
			continue
		}

		keyboard := buildBrowseKeyboard(sess.ID, item, false)
		edit := tgbotapi.NewEditMessageReplyMarkup(sess.ChatID, sess.MessageID, keyboard)

		if _, err := b.api.Send(edit); err != nil {
			b.logger.Warn().Err(err).Str(LogFieldSessionID, sess.ID).Msg("failed to retire expired session keyboard")

			continue
		}

		b.logger.Debug().Str(LogFieldSessionID, sess.ID).Msg("browse session expired")
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to delete placeholder")
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/neuroforge/telegram-morph-bot/internal/morph"
	"github.com/neuroforge/telegram-morph-bot/internal/translate"
)

const (
	morphOff = "off"

	morphUsage = "Usage: /morph <chinese|japanese|off>"

	chineseModeUsage  = "Usage: /chinesemode <text>"
	chineseModeTitle  = "成为中国人"
	translatingText   = "Translating…"
	translateFailFmt  = "Translation failed (status %d)."
	translateDownText = "Translation service unreachable."
)

const helpText = `/morph <chinese|japanese|off> - rewrite everything this bot posts
/becomechinese - toggle Chinese rewriting
/chinesemode <text> - translate one message to Chinese
/shodan <city> - browse screenshotted hosts in a city
/shodan_query <query> - browse hosts for a raw query (must include has_screenshot:true)`

// handleHelp goes out as a regular bot message, so an active mode rewrites it
// like anything else the bot says.
func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	card := morph.Message{Blocks: []morph.Block{{Title: "Commands", Body: helpText}}}

	if _, err := b.sendCard(ctx, msg.Chat.ID, card); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to send help")
	}
}

// handleMorph sets or clears the channel's transformation mode. Confirmations
// go out on the silent path: toggling must not itself produce a transformed
// message.
func (b *Bot) handleMorph(_ context.Context, msg *tgbotapi.Message) {
	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))

	switch {
	case arg == "":
		b.replySilent(msg.Chat.ID, morphUsage)
	case arg == morphOff:
		b.modes.Clear(msg.Chat.ID)
		b.replySilent(msg.Chat.ID, "Transformation disabled.")
	default:
		mode, ok := morph.ModeByName(arg)
		if !ok {
			b.replySilent(msg.Chat.ID, morphUsage)

			return
		}

		b.modes.Set(msg.Chat.ID, mode)
		b.replySilent(msg.Chat.ID, fmt.Sprintf("Now speaking %s.%s", mode.LanguageName(), mode.Marker))
	}
}

// handleBecomeChinese toggles the Chinese mode on and off.
func (b *Bot) handleBecomeChinese(_ context.Context, msg *tgbotapi.Message) {
	if mode, ok := b.modes.Get(msg.Chat.ID); ok && mode.Name == morph.ModeChinese.Name {
		b.modes.Clear(msg.Chat.ID)
		b.replySilent(msg.Chat.ID, "Back to normal.")

		return
	}

	b.modes.Set(msg.Chat.ID, morph.ModeChinese)
	b.replySilent(msg.Chat.ID, "我现在是中国人了。"+morph.ModeChinese.Marker)
}

// handleChineseMode translates one message on demand. Upstream status codes
// are surfaced to the user, unlike the absorbing pipeline path.
func (b *Bot) handleChineseMode(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.replySilent(msg.Chat.ID, chineseModeUsage)

		return
	}

	placeholderID, err := b.sendCardSilent(msg.Chat.ID, morph.Message{Body: translatingText})
	if err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to send placeholder")

		return
	}

	out, err := b.translator.Do(ctx, text, morph.ModeChinese.Target)
	if err != nil {
		var apiErr *translate.APIError

		body := translateDownText
		if errors.As(err, &apiErr) {
			body = fmt.Sprintf(translateFailFmt, apiErr.Status)
		}

		if err := b.editCardSilent(msg.Chat.ID, placeholderID, morph.Message{Body: body}); err != nil {
			b.logger.Warn().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to edit placeholder")
		}

		return
	}

	// The footer already carries the marker, so an active mode will not
	// rewrite the result a second time.
	b.editCard(ctx, msg.Chat.ID, placeholderID, morph.Message{Blocks: []morph.Block{{
		Title:  chineseModeTitle,
		Body:   out,
		Footer: morph.ModeChinese.Footer,
	}}})
}

package bot

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/neuroforge/telegram-morph-bot/internal/morph"
	"github.com/neuroforge/telegram-morph-bot/internal/recon"
)

const fileNameFmt = "shodan_%s.%s"

// renderCardHTML flattens a card into Telegram HTML. All content is escaped;
// markup comes only from the card structure.
func renderCardHTML(card morph.Message) string {
	var sb strings.Builder

	if card.Body != "" {
		sb.WriteString(html.EscapeString(card.Body))
	}

	for _, block := range card.Blocks {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}

		renderBlockHTML(&sb, block)
	}

	return sb.String()
}

func renderBlockHTML(sb *strings.Builder, block morph.Block) {
	if block.Title != "" {
		sb.WriteString("<b>")
		sb.WriteString(html.EscapeString(block.Title))
		sb.WriteString("</b>\n")
	}

	if block.Body != "" {
		sb.WriteString(html.EscapeString(block.Body))
		sb.WriteString("\n")
	}

	for _, field := range block.Fields {
		sb.WriteString("<b>")
		sb.WriteString(html.EscapeString(field.Name))
		sb.WriteString(":</b> ")
		sb.WriteString(html.EscapeString(field.Value))
		sb.WriteString("\n")
	}

	if block.Footer != "" {
		sb.WriteString("<i>")
		sb.WriteString(html.EscapeString(block.Footer))
		sb.WriteString("</i>")
	}
}

// renderResultCaption formats one search result as a photo caption.
func renderResultCaption(item recon.ResultItem) string {
	var sb strings.Builder

	sb.WriteString("<b>IP:</b> <code>")
	sb.WriteString(html.EscapeString(item.PortLabel()))
	sb.WriteString("</code>\n")

	sb.WriteString("<b>Org:</b> ")
	sb.WriteString(html.EscapeString(item.Org))
	sb.WriteString("\n")

	sb.WriteString("<b>ASN:</b> ")
	sb.WriteString(renderASN(item.ASN))
	sb.WriteString("\n")

	sb.WriteString("<b>Country:</b> ")
	sb.WriteString(html.EscapeString(item.Country))
	sb.WriteString("  <b>Region:</b> ")
	sb.WriteString(html.EscapeString(item.Region))
	sb.WriteString("\n")

	sb.WriteString("<b>Product:</b> ")
	sb.WriteString(html.EscapeString(item.Product))
	sb.WriteString("  <b>Transport:</b> ")
	sb.WriteString(html.EscapeString(item.Transport))
	sb.WriteString("\n")

	sb.WriteString("<b>Hostnames:</b> ")
	sb.WriteString(html.EscapeString(item.Hostnames))
	sb.WriteString("\n")

	sb.WriteString("<b>Domains:</b> ")
	sb.WriteString(html.EscapeString(item.Domains))
	sb.WriteString("\n")

	sb.WriteString("<i>Seen: ")
	sb.WriteString(html.EscapeString(item.SeenLabel()))
	sb.WriteString("</i>")

	return sb.String()
}

// renderASN links a known ASN to an external lookup.
func renderASN(asn string) string {
	if asn == recon.Unknown {
		return recon.Unknown
	}

	return fmt.Sprintf(`<a href="%s">%s</a>`, recon.ASNLookupURL(asn), html.EscapeString(asn))
}

// buildBrowseKeyboard recomputes the card keyboard from scratch for every
// render. An active card gets a live retry button; a retired one gets a dead
// button that only answers an alert. There is at most one URL button, always
// pointing at the item currently shown.
func buildBrowseKeyboard(sessionID string, item recon.ResultItem, active bool) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton

	if active {
		data := CallbackPrefixBrowse + CallbackActionRetry + ":" + sessionID
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(ButtonRetry, data))
	} else {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(ButtonSessionEnded, CallbackPrefixBrowse+CallbackActionDead))
	}

	if item.HasAddr() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL(ButtonOpenHost, recon.HostURL(item.Addr)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// resultFileName names the screenshot attachment from the best available
// hint.
func resultFileName(item recon.ResultItem, hint string) string {
	if hint == "" {
		hint = item.City
	}

	if hint == "" && item.Org != recon.Unknown {
		hint = item.Org
	}

	if hint == "" {
		hint = defaultFileHint
	}

	return fmt.Sprintf(fileNameFmt, sanitizeFileHint(hint), item.ImageExt)
}

// sanitizeFileHint lowercases the hint and keeps only filename-safe runes.
func sanitizeFileHint(hint string) string {
	var sb strings.Builder

	for _, r := range strings.ToLower(hint) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			sb.WriteRune('_')
		}
	}

	if sb.Len() == 0 {
		return defaultFileHint
	}

	return sb.String()
}

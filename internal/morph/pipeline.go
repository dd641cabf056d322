package morph

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/neuroforge/telegram-morph-bot/internal/platform/observability"
)

const (
	logFieldChannel = "channel_id"
	logFieldMessage = "message_id"
	logFieldMode    = "mode"
)

// Translator converts text to the target language, returning the input
// unchanged when translation is unavailable.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// MessageEditor applies a rewritten message back to the channel in place.
type MessageEditor interface {
	EditMessage(ctx context.Context, channelID int64, messageID int, msg Message) error
}

// Pipeline reacts to the bot's own posted and edited messages and rewrites
// them into the channel's active mode language.
type Pipeline struct {
	registry   *Registry
	translator Translator
	editor     MessageEditor
	logger     *zerolog.Logger
}

func NewPipeline(registry *Registry, translator Translator, editor MessageEditor, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		registry:   registry,
		translator: translator,
		editor:     editor,
		logger:     logger,
	}
}

// OnBotMessage is invoked for every message the bot posts or edits. When the
// channel has an active mode and the message is not yet marked, the message
// is translated and edited in place. The resulting edit flows back through
// this hook and stops at the marker guard, so the cycle converges after one
// transformation. All failures are logged and swallowed: the pipeline never
// disturbs the operation that produced the message.
func (p *Pipeline) OnBotMessage(ctx context.Context, channelID int64, messageID int, msg Message) {
	mode, ok := p.registry.Get(channelID)
	if !ok {
		return
	}

	if AlreadyTransformed(msg) {
		return
	}

	transformed := p.transform(ctx, mode, msg)

	if err := p.editor.EditMessage(ctx, channelID, messageID, transformed); err != nil {
		p.logger.Warn().Err(err).
			Int64(logFieldChannel, channelID).
			Int(logFieldMessage, messageID).
			Str(logFieldMode, mode.Name).
			Msg("failed to apply transformed message")

		return
	}

	observability.MessagesTransformed.WithLabelValues(mode.Name).Inc()
}

// transform rewrites every text part of the message and stamps the mode
// marker. The marker is appended even when translation fell back to the
// original text, so a degraded translator cannot cause an edit loop.
func (p *Pipeline) transform(ctx context.Context, mode Mode, msg Message) Message {
	out := Message{}

	if msg.Body != "" {
		out.Body = p.translator.Translate(ctx, msg.Body, mode.Target) + mode.Marker
	}

	out.Blocks = make([]Block, 0, len(msg.Blocks))
	for _, block := range msg.Blocks {
		out.Blocks = append(out.Blocks, p.transformBlock(ctx, mode, block))
	}

	return out
}

func (p *Pipeline) transformBlock(ctx context.Context, mode Mode, block Block) Block {
	out := Block{
		Title: p.translator.Translate(ctx, block.Title, mode.Target),
		Body:  p.translator.Translate(ctx, block.Body, mode.Target),
	}

	out.Fields = make([]Field, 0, len(block.Fields))
	for _, field := range block.Fields {
		out.Fields = append(out.Fields, Field{
			Name:   p.translator.Translate(ctx, field.Name, mode.Target),
			Value:  p.translator.Translate(ctx, field.Value, mode.Target),
			Inline: field.Inline,
		})
	}

	if block.Footer != "" {
		out.Footer = p.translator.Translate(ctx, block.Footer, mode.Target) + mode.Marker
	} else {
		out.Footer = mode.Footer
	}

	return out
}

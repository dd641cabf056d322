package morph

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upperTranslator "translates" by marking text, making transformed output
// distinguishable without a live upstream.
type upperTranslator struct{}

func (upperTranslator) Translate(_ context.Context, text, _ string) string {
	if text == "" {
		return ""
	}

	return "T:" + text
}

// passthroughTranslator simulates a degraded upstream that returns input
// unchanged.
type passthroughTranslator struct{}

func (passthroughTranslator) Translate(_ context.Context, text, _ string) string {
	return text
}

// loopEditor feeds every edit back into the pipeline, mimicking the edit
// event the real transport delivers after an in-place rewrite.
type loopEditor struct {
	pipeline *Pipeline
	edits    []Message
	err      error
}

func (e *loopEditor) EditMessage(ctx context.Context, channelID int64, messageID int, msg Message) error {
	if e.err != nil {
		return e.err
	}

	e.edits = append(e.edits, msg)
	e.pipeline.OnBotMessage(ctx, channelID, messageID, msg)

	return nil
}

func newTestPipeline(translator Translator) (*Pipeline, *Registry, *loopEditor) {
	registry := NewRegistry()
	editor := &loopEditor{}
	logger := zerolog.Nop()
	pipeline := NewPipeline(registry, translator, editor, &logger)
	editor.pipeline = pipeline

	return pipeline, registry, editor
}

func TestPipelineDisabledChannelUntouched(t *testing.T) {
	pipeline, _, editor := newTestPipeline(upperTranslator{})

	pipeline.OnBotMessage(context.Background(), 10, 1, Message{Body: "hello"})

	assert.Empty(t, editor.edits)
}

func TestPipelineTransformsOnce(t *testing.T) {
	pipeline, registry, editor := newTestPipeline(upperTranslator{})
	registry.Set(10, ModeChinese)

	pipeline.OnBotMessage(context.Background(), 10, 1, Message{Body: "hello"})

	// The edit re-enters the pipeline and must stop at the guard.
	require.Len(t, editor.edits, 1)
	assert.Equal(t, "T:hello 🇨🇳", editor.edits[0].Body)
}

func TestPipelineMarkerStampedOnDegradedTranslator(t *testing.T) {
	pipeline, registry, editor := newTestPipeline(passthroughTranslator{})
	registry.Set(10, ModeJapanese)

	pipeline.OnBotMessage(context.Background(), 10, 1, Message{Body: "hello"})

	require.Len(t, editor.edits, 1)
	assert.Equal(t, "hello 🇯🇵", editor.edits[0].Body)
	assert.True(t, AlreadyTransformed(editor.edits[0]))
}

func TestPipelineSkipsTransformedMessage(t *testing.T) {
	pipeline, registry, editor := newTestPipeline(upperTranslator{})
	registry.Set(10, ModeChinese)

	pipeline.OnBotMessage(context.Background(), 10, 1, Message{Body: "done 🇨🇳"})

	assert.Empty(t, editor.edits)
}

func TestPipelineOtherModeMarkerStopsTransform(t *testing.T) {
	pipeline, registry, editor := newTestPipeline(upperTranslator{})
	registry.Set(10, ModeChinese)

	// Marker from a different mode still counts as transformed.
	pipeline.OnBotMessage(context.Background(), 10, 1, Message{Body: "done 🇯🇵"})

	assert.Empty(t, editor.edits)
}

func TestPipelineBlockTransform(t *testing.T) {
	pipeline, registry, editor := newTestPipeline(upperTranslator{})
	registry.Set(10, ModeChinese)

	msg := Message{Blocks: []Block{{
		Title: "Scan result",
		Body:  "details",
		Fields: []Field{
			{Name: "Port", Value: "443", Inline: true},
			{Name: "Org", Value: "Example Corp", Inline: false},
		},
	}}}

	pipeline.OnBotMessage(context.Background(), 10, 2, msg)

	require.Len(t, editor.edits, 1)
	block := editor.edits[0].Blocks[0]
	assert.Equal(t, "T:Scan result", block.Title)
	assert.Equal(t, "T:details", block.Body)
	require.Len(t, block.Fields, 2)
	assert.Equal(t, "T:Port", block.Fields[0].Name)
	assert.Equal(t, "T:443", block.Fields[0].Value)
	assert.True(t, block.Fields[0].Inline)
	assert.False(t, block.Fields[1].Inline)

	// Empty footer gets the mode attribution line, which carries the marker.
	assert.Equal(t, "translated 🇨🇳", block.Footer)
	assert.True(t, AlreadyTransformed(editor.edits[0]))
}

func TestPipelineExistingFooterKeepsMarkerSuffix(t *testing.T) {
	pipeline, registry, editor := newTestPipeline(upperTranslator{})
	registry.Set(10, ModeJapanese)

	msg := Message{Blocks: []Block{{Body: "b", Footer: "source: scanner"}}}

	pipeline.OnBotMessage(context.Background(), 10, 3, msg)

	require.Len(t, editor.edits, 1)
	assert.Equal(t, "T:source: scanner 🇯🇵", editor.edits[0].Blocks[0].Footer)
}

func TestPipelineEditFailureSwallowed(t *testing.T) {
	registry := NewRegistry()
	editor := &loopEditor{err: errors.New("edit rejected")}
	logger := zerolog.Nop()
	pipeline := NewPipeline(registry, upperTranslator{}, editor, &logger)
	registry.Set(10, ModeChinese)

	// Must not panic or propagate.
	pipeline.OnBotMessage(context.Background(), 10, 1, Message{Body: "hello"})

	assert.Empty(t, editor.edits)
}

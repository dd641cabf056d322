// Package morph implements the self-message transformation pipeline: every
// message the bot posts is rewritten into the active channel mode's language,
// with a marker suffix guarding against re-transformation loops.
package morph

// Field is one labeled value inside a rich block.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Block is a rich content section of a message, mirroring the card layout
// the bot renders.
type Block struct {
	Title  string
	Body   string
	Fields []Field
	Footer string
}

// Message is the transport-agnostic view of a bot message the pipeline
// operates on.
type Message struct {
	Body   string
	Blocks []Block
}

package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlreadyTransformed(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{
			name: "plain body without marker",
			msg:  Message{Body: "hello world"},
			want: false,
		},
		{
			name: "body with chinese marker",
			msg:  Message{Body: "你好 🇨🇳"},
			want: true,
		},
		{
			name: "body with japanese marker",
			msg:  Message{Body: "こんにちは 🇯🇵"},
			want: true,
		},
		{
			name: "marker in middle of body does not count",
			msg:  Message{Body: "before 🇨🇳 after"},
			want: false,
		},
		{
			name: "block footer with marker",
			msg: Message{Blocks: []Block{
				{Title: "title", Footer: "translated 🇨🇳"},
			}},
			want: true,
		},
		{
			name: "block body with marker",
			msg: Message{Blocks: []Block{
				{Body: "正文 🇯🇵"},
			}},
			want: true,
		},
		{
			name: "block without markers",
			msg: Message{Blocks: []Block{
				{Title: "title", Body: "body", Footer: "footer"},
			}},
			want: false,
		},
		{
			name: "empty message",
			msg:  Message{},
			want: false,
		},
		{
			name: "marker only in field value does not count",
			msg: Message{Blocks: []Block{
				{Fields: []Field{{Name: "n", Value: "v 🇨🇳"}}},
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AlreadyTransformed(tt.msg))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get(1)
	assert.False(t, ok)

	r.Set(1, ModeChinese)

	mode, ok := r.Get(1)
	assert.True(t, ok)
	assert.Equal(t, ModeChinese, mode)

	// Setting again replaces, it does not stack.
	r.Set(1, ModeJapanese)

	mode, _ = r.Get(1)
	assert.Equal(t, ModeJapanese, mode)

	r.Clear(1)

	_, ok = r.Get(1)
	assert.False(t, ok)

	// Clearing an inactive channel is a no-op.
	r.Clear(2)
}

func TestModeByName(t *testing.T) {
	mode, ok := ModeByName("chinese")
	assert.True(t, ok)
	assert.Equal(t, "zh", mode.Target)

	mode, ok = ModeByName("japanese")
	assert.True(t, ok)
	assert.Equal(t, "ja", mode.Target)

	_, ok = ModeByName("klingon")
	assert.False(t, ok)
}

func TestModeLanguageName(t *testing.T) {
	assert.Equal(t, "Chinese", ModeChinese.LanguageName())
	assert.Equal(t, "Japanese", ModeJapanese.LanguageName())
}

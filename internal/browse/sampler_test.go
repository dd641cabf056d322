package browse

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroforge/telegram-morph-bot/internal/recon"
)

func testMatches(n int) []recon.Match {
	data := base64.StdEncoding.EncodeToString([]byte{0x01})
	matches := make([]recon.Match, 0, n)

	for i := range n {
		matches = append(matches, recon.Match{
			IPStr:      fmt.Sprintf("203.0.113.%d", i+1),
			Port:       80,
			Screenshot: &recon.Screenshot{Data: data, Mime: "image/jpeg"},
		})
	}

	return matches
}

func TestNewPoolDropsScreenshotlessMatches(t *testing.T) {
	matches := testMatches(2)
	matches = append(matches, recon.Match{IPStr: "203.0.113.99"})

	pool := NewPool("port:80", matches)
	assert.Equal(t, 2, pool.Size())
}

func TestSamplerNoRepeats(t *testing.T) {
	const size = 20

	pool := NewPool("port:80", testMatches(size))
	sampler := NewSampler(pool, 42)

	seen := make(map[string]struct{}, size)

	for range size {
		item, err := sampler.Draw()
		require.NoError(t, err)

		_, dup := seen[item.Addr]
		assert.False(t, dup, "address %s drawn twice", item.Addr)
		seen[item.Addr] = struct{}{}
	}

	assert.Zero(t, sampler.Remaining())

	_, err := sampler.Draw()
	assert.ErrorIs(t, err, ErrExhausted)

	// Exhaustion leaves the last drawn item as current.
	_, ok := sampler.Current()
	assert.True(t, ok)
}

func TestSamplerExhaustedWithoutMutation(t *testing.T) {
	pool := NewPool("port:80", testMatches(1))
	sampler := NewSampler(pool, 42)

	first, err := sampler.Draw()
	require.NoError(t, err)

	_, err = sampler.Draw()
	assert.ErrorIs(t, err, ErrExhausted)

	current, ok := sampler.Current()
	require.True(t, ok)
	assert.Equal(t, first.Addr, current.Addr)
}

func TestSamplerRetryUnauthorized(t *testing.T) {
	pool := NewPool("port:80", testMatches(3))
	sampler := NewSampler(pool, 42)
	assert.Equal(t, int64(42), sampler.Owner())

	_, err := sampler.Draw()
	require.NoError(t, err)

	before := sampler.Remaining()

	_, err = sampler.Retry(7)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, before, sampler.Remaining())

	_, err = sampler.Retry(42)
	assert.NoError(t, err)
	assert.Equal(t, before-1, sampler.Remaining())
}

func TestSamplerCurrentBeforeFirstDraw(t *testing.T) {
	pool := NewPool("port:80", testMatches(1))
	sampler := NewSampler(pool, 42)

	_, ok := sampler.Current()
	assert.False(t, ok)
}

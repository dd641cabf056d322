// Package browse implements the retry-sampling flow over a fixed result set:
// one random no-repeat draw per retry, bound to the user who started it, until
// the pool is exhausted or the session expires.
package browse

import (
	"github.com/neuroforge/telegram-morph-bot/internal/recon"
)

// Pool is the immutable result set a browse session draws from. Matches
// without usable screenshots are dropped at construction, so every pool item
// is renderable.
type Pool struct {
	Query string

	items []recon.ResultItem
}

func NewPool(query string, matches []recon.Match) *Pool {
	items := make([]recon.ResultItem, 0, len(matches))

	for _, m := range matches {
		item, err := recon.NewResultItem(m)
		if err != nil {
			continue
		}

		items = append(items, item)
	}

	return &Pool{Query: query, items: items}
}

// Size returns the number of displayable items.
func (p *Pool) Size() int {
	return len(p.items)
}

// Item returns the pool item at index i.
func (p *Pool) Item(i int) recon.ResultItem {
	return p.items[i]
}

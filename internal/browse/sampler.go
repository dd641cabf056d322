package browse

import (
	"errors"
	"math/rand/v2"

	"github.com/neuroforge/telegram-morph-bot/internal/recon"
)

var (
	// ErrExhausted means every pool item has been shown.
	ErrExhausted = errors.New("no unseen results remain")

	// ErrUnauthorized means the retry came from someone other than the
	// session owner.
	ErrUnauthorized = errors.New("requester does not own this session")

	// ErrExpired means the session outlived its inactivity window.
	ErrExpired = errors.New("session expired")
)

// Sampler draws pool items uniformly at random without repetition. Not safe
// for concurrent use; the session manager serializes access.
type Sampler struct {
	pool     *Pool
	owner    int64
	consumed map[int]struct{}
	current  int
}

func NewSampler(pool *Pool, owner int64) *Sampler {
	return &Sampler{
		pool:     pool,
		owner:    owner,
		consumed: make(map[int]struct{}, pool.Size()),
		current:  -1,
	}
}

// Owner returns the user the sampler is bound to.
func (s *Sampler) Owner() int64 {
	return s.owner
}

// Current returns the most recently drawn item, if any draw has happened.
func (s *Sampler) Current() (recon.ResultItem, bool) {
	if s.current < 0 {
		return recon.ResultItem{}, false
	}

	return s.pool.Item(s.current), true
}

// Remaining returns how many items have not been shown yet.
func (s *Sampler) Remaining() int {
	return s.pool.Size() - len(s.consumed)
}

// Draw picks one unseen item uniformly at random and marks it shown. Returns
// ErrExhausted, without mutating state, when nothing unseen remains.
func (s *Sampler) Draw() (recon.ResultItem, error) {
	remaining := s.Remaining()
	if remaining == 0 {
		return recon.ResultItem{}, ErrExhausted
	}

	// The winner is the nth unseen index; a linear scan is fine at pool
	// sizes capped by the search limit.
	nth := rand.IntN(remaining)

	for i := range s.pool.Size() {
		if _, seen := s.consumed[i]; seen {
			continue
		}

		if nth == 0 {
			s.consumed[i] = struct{}{}
			s.current = i

			return s.pool.Item(i), nil
		}

		nth--
	}

	return recon.ResultItem{}, ErrExhausted
}

// Retry validates the requester and draws the next item. Ownership is checked
// before any state changes, so a rejected retry leaves the sampler untouched.
func (s *Sampler) Retry(requesterID int64) (recon.ResultItem, error) {
	if requesterID != s.owner {
		return recon.ResultItem{}, ErrUnauthorized
	}

	return s.Draw()
}

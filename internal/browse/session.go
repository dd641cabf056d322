package browse

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neuroforge/telegram-morph-bot/internal/recon"
)

// Session is one live browse interaction: a sampler anchored to a specific
// chat message whose retry button drives the draws.
type Session struct {
	ID        string
	ChatID    int64
	MessageID int
	Sampler   *Sampler

	deadline time.Time
}

// Manager owns all live sessions and applies the inactivity deadline. All
// access is serialized through one mutex; the callback volume of a chat bot
// does not warrant anything finer.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration

	now func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a session for a chat. The anchor message ID is bound
// separately via Bind once the message has been posted.
func (m *Manager) Create(chatID, owner int64, pool *Pool) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &Session{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		Sampler:  NewSampler(pool, owner),
		deadline: m.now().Add(m.ttl),
	}

	m.sessions[sess.ID] = sess
	SessionsActive.Inc()

	return sess
}

// Bind attaches the posted anchor message to the session.
func (m *Manager) Bind(sessionID string, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[sessionID]; ok {
		sess.MessageID = messageID
	}
}

// Retry draws the next item for the session. A successful draw extends the
// inactivity deadline. Exhaustion removes the session; it is terminal.
// Unknown session IDs report ErrExpired since the reaper has already removed
// them.
func (m *Manager) Retry(sessionID string, requesterID int64) (recon.ResultItem, *Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		RetriesTotal.WithLabelValues(OutcomeExpired).Inc()

		return recon.ResultItem{}, nil, ErrExpired
	}

	item, err := sess.Sampler.Retry(requesterID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			RetriesTotal.WithLabelValues(OutcomeUnauthorized).Inc()
		case errors.Is(err, ErrExhausted):
			RetriesTotal.WithLabelValues(OutcomeExhausted).Inc()
			delete(m.sessions, sessionID)
			SessionsActive.Dec()
		}

		return recon.ResultItem{}, sess, err
	}

	sess.deadline = m.now().Add(m.ttl)
	RetriesTotal.WithLabelValues(OutcomeOK).Inc()

	return item, sess, nil
}

// ExpireDue removes and returns every session past its deadline so the
// caller can retire their keyboards.
func (m *Manager) ExpireDue() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	var due []*Session

	for id, sess := range m.sessions {
		if now.After(sess.deadline) {
			due = append(due, sess)
			delete(m.sessions, id)
			SessionsActive.Dec()
		}
	}

	return due
}

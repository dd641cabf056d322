package morph

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Mode describes one target language the pipeline can rewrite messages into.
// Marker is the loop-guard suffix appended to transformed text; Footer is the
// attribution line stamped on rich blocks and always ends with Marker.
type Mode struct {
	Name   string
	Target string
	Marker string
	Footer string
}

var (
	ModeChinese = Mode{
		Name:   "chinese",
		Target: "zh",
		Marker: " 🇨🇳",
		Footer: "translated 🇨🇳",
	}

	ModeJapanese = Mode{
		Name:   "japanese",
		Target: "ja",
		Marker: " 🇯🇵",
		Footer: "translated 🇯🇵",
	}
)

// AllModes lists every supported mode. Guard checks scan all of them so a
// message transformed under one mode is never re-transformed under another.
var AllModes = []Mode{ModeChinese, ModeJapanese}

// ModeByName resolves a mode from its user-facing name.
func ModeByName(name string) (Mode, bool) {
	for _, m := range AllModes {
		if m.Name == name {
			return m, true
		}
	}

	return Mode{}, false
}

// LanguageName returns the English display name of the mode's target language.
func (m Mode) LanguageName() string {
	tag, err := language.Parse(m.Target)
	if err != nil {
		return m.Target
	}

	return display.English.Tags().Name(tag)
}

// Registry holds the per-channel active mode. Absence means the pipeline is
// disabled for that channel.
type Registry struct {
	mu    sync.RWMutex
	modes map[int64]Mode
}

func NewRegistry() *Registry {
	return &Registry{modes: make(map[int64]Mode)}
}

// Set activates a mode for the channel, replacing any previous one.
func (r *Registry) Set(channelID int64, mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modes[channelID] = mode
}

// Clear disables transformation for the channel. Clearing an inactive channel
// is a no-op.
func (r *Registry) Clear(channelID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.modes, channelID)
}

// Get returns the active mode for the channel, if any.
func (r *Registry) Get(channelID int64) (Mode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mode, ok := r.modes[channelID]

	return mode, ok
}

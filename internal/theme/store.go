package theme

import (
	"sync"

	"go.uber.org/zap"

	"github.com/AhamSammich/dexbee-docs/internal/logging"
	"github.com/AhamSammich/dexbee-docs/internal/platform"
)

const (
	// Attribute is the document-level styling flag.
	Attribute = "data-theme"
	// PrefKey is the persisted preference key.
	PrefKey = "dexbee-theme"

	Dark  = "dark"
	Light = "light"
)

// Change carries a theme update to subscribers.
type Change struct {
	Theme  string `json:"theme"`
	IsDark bool   `json:"isDark"`
}

// Store coordinates theme state across independently mounted consumers.
type Store struct {
	mu     sync.Mutex
	isDark bool
	subs   map[int]func(Change)
	nextID int

	doc        *platform.Document
	prefs      platform.Prefs
	disconnect func()
	log        *logging.Logger
}

// InitialTheme resolves the theme for first render. With no rendering surface
// it returns false deterministically, regardless of stored preference. With a
// surface the stored preference wins, then the OS scheme, defaulting to light.
// Storage failure reads as "no stored preference"; this never raises.
func InitialTheme(doc *platform.Document, prefs platform.Prefs, probe platform.SchemeProbe) bool {
	if doc == nil {
		return false
	}
	if prefs != nil {
		if stored, ok := prefs.Get(PrefKey); ok {
			return stored == Dark
		}
	}
	if probe != nil {
		return probe.PrefersDark()
	}
	return false
}

// NewStore creates the store, resolves the initial theme synchronously, and
// applies it to the document attribute before returning. It also begins
// observing the attribute so direct mutations by consumers are absorbed and
// re-broadcast.
func NewStore(doc *platform.Document, prefs platform.Prefs, probe platform.SchemeProbe, log *logging.Logger) *Store {
	if log == nil {
		log = logging.NewNop()
	}
	s := &Store{
		isDark: InitialTheme(doc, prefs, probe),
		subs:   make(map[int]func(Change)),
		doc:    doc,
		prefs:  prefs,
		log:    log,
	}
	if doc != nil {
		doc.SetAttribute(Attribute, Name(s.isDark))
		s.disconnect = doc.Observe(s.onAttribute)
	}
	return s
}

// Name maps the boolean form to the theme name.
func Name(isDark bool) string {
	if isDark {
		return Dark
	}
	return Light
}

// IsDark reports the current theme.
func (s *Store) IsDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDark
}

// Theme reports the current theme name.
func (s *Store) Theme() string {
	return Name(s.IsDark())
}

// Toggle flips the theme: one attribute mutation, one best-effort preference
// write, one broadcast. Never returns an error; a failed persist only means
// the preference is not durable.
func (s *Store) Toggle() {
	s.mu.Lock()
	s.isDark = !s.isDark
	change := Change{Theme: Name(s.isDark), IsDark: s.isDark}
	subs := s.snapshotLocked()
	s.mu.Unlock()

	// The attribute observer sees a value matching current state and treats
	// it as already applied, so the broadcast below is the only delivery.
	if s.doc != nil {
		s.doc.SetAttribute(Attribute, change.Theme)
	}
	if s.prefs != nil {
		s.prefs.Set(PrefKey, change.Theme)
	}

	s.log.Debug("theme toggled", zap.String("theme", change.Theme))
	for _, fn := range subs {
		fn(change)
	}
}

// Subscribe registers a consumer for theme changes and returns its
// unsubscribe func. A single registration covers both propagation paths.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	idx := s.nextID
	s.nextID++
	s.subs[idx] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, idx)
		s.mu.Unlock()
	}
}

// Close disconnects the attribute observer.
func (s *Store) Close() {
	if s.disconnect != nil {
		s.disconnect()
		s.disconnect = nil
	}
}

// onAttribute is the fallback propagation path: a consumer wrote the styling
// attribute directly. Absorb the value into store state and notify, unless
// the attribute already matches (the Toggle path applied it first).
func (s *Store) onAttribute(name, value string) {
	if name != Attribute {
		return
	}
	isDark := value == Dark

	s.mu.Lock()
	if isDark == s.isDark {
		s.mu.Unlock()
		return
	}
	s.isDark = isDark
	change := Change{Theme: Name(isDark), IsDark: isDark}
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("theme absorbed from attribute", zap.String("theme", change.Theme))
	for _, fn := range subs {
		fn(change)
	}
}

func (s *Store) snapshotLocked() []func(Change) {
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

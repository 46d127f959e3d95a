package client

import "sync"

// View is the top-level UI mode.
type View int

const (
	// ViewAuth shows the login/registration surface.
	ViewAuth View = iota
	// ViewMain shows the dashboard and company panels.
	ViewMain
)

// Panel identifies an output slot whose refreshes are sequence-guarded.
type Panel int

const (
	PanelDashboard Panel = iota
	PanelDetail
	PanelSector
	PanelCompany
	panelCount
)

// State tracks the visible view and one output slot per panel. Each slot
// carries a sequence counter: Begin stamps a new fetch as the latest, and
// Commit refuses writes from fetches that have been superseded since. That
// is what keeps a slow stale response from overwriting a newer one when
// requests overlap.
type State struct {
	mu     sync.Mutex
	view   View
	seq    [panelCount]uint64
	output [panelCount]string
}

// NewState starts in the unauthenticated view.
func NewState() *State {
	return &State{view: ViewAuth}
}

// View returns the current view.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches the visible view.
func (s *State) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// Begin marks the start of a fetch for the panel and returns its sequence
// number. Any fetch begun earlier is superseded from this point on.
func (s *State) Begin(p Panel) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[p]++
	return s.seq[p]
}

// Commit writes text into the panel's slot if seq still identifies the
// latest fetch. It reports whether the write happened.
func (s *State) Commit(p Panel, seq uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq[p] {
		return false
	}
	s.output[p] = text
	return true
}

// Output returns the panel's current content.
func (s *State) Output(p Panel) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output[p]
}

// ForceAuth drops to the unauthenticated view, clears every panel and
// supersedes all in-flight fetches so they cannot commit afterwards.
func (s *State) ForceAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ViewAuth
	for p := Panel(0); p < panelCount; p++ {
		s.seq[p]++
		s.output[p] = ""
	}
}

package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dan9191/bankshot/internal/models"
)

// Session holds the data one user's dashboard renders. All fields are
// guarded by mu; nothing is shared between sessions.
type Session struct {
	ID string

	mu         sync.Mutex
	state      State
	snapshot   *models.FinancialSnapshot
	derived    models.DerivedView
	chat       []models.ChatTurn
	simulation *models.SimulationResult
	lastSeen   time.Time

	// refresh bookkeeping: nextSeq numbers refreshes as they start,
	// installedSeq is the newest one whose snapshot is showing
	nextSeq      uint64
	installedSeq uint64
	inFlight     int

	chatBusy atomic.Bool
}

// New creates a session in the initial state
func New(id string, now time.Time) *Session {
	return &Session{ID: id, state: Initial(), lastSeen: now}
}

// State returns the current navigation/auth state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply runs a state transition and returns the new state.
func (s *Session) Apply(transition func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = transition(s.state)
	return s.state
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// BeginRefresh registers a refresh and returns its sequence number.
func (s *Session) BeginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	s.inFlight++
	return s.nextSeq
}

// Install finishes refresh seq. The snapshot replaces the current one only
// if no newer refresh has been installed already; it reports whether it did.
func (s *Session) Install(seq uint64, snap *models.FinancialSnapshot, derived models.DerivedView) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 {
		s.inFlight--
	}
	if seq <= s.installedSeq {
		return false
	}
	s.installedSeq = seq
	s.snapshot = snap
	s.derived = derived
	s.simulation = nil
	return true
}

// Loading reports whether any refresh is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Snapshot returns the current snapshot (nil before the first refresh) and
// its derived view.
func (s *Session) Snapshot() (*models.FinancialSnapshot, models.DerivedView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.derived
}

// PatchGoal replaces the goal of the current snapshot and returns the new
// snapshot. It does nothing and returns nil before the first refresh. derive
// recomputes the derived view.
func (s *Session) PatchGoal(goal float64, derive func(*models.FinancialSnapshot) models.DerivedView) *models.FinancialSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil
	}
	s.snapshot = s.snapshot.WithGoal(goal)
	s.derived = derive(s.snapshot)
	return s.snapshot
}

// TryBeginChat claims the session's single outstanding question slot.
func (s *Session) TryBeginChat() bool {
	return s.chatBusy.CompareAndSwap(false, true)
}

// EndChat releases the question slot.
func (s *Session) EndChat() {
	s.chatBusy.Store(false)
}

// AppendChat adds turns to the end of the conversation log.
func (s *Session) AppendChat(turns ...models.ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, turns...)
}

// Chat returns a copy of the conversation log in insertion order.
func (s *Session) Chat() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatTurn, len(s.chat))
	copy(out, s.chat)
	return out
}

// SetSimulation stores the latest simulation result.
func (s *Session) SetSimulation(r models.SimulationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulation = &r
}

// Simulation returns the latest simulation result, if any.
func (s *Session) Simulation() *models.SimulationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.simulation == nil {
		return nil
	}
	r := *s.simulation
	return &r
}

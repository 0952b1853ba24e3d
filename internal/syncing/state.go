package syncing

import "fmt"

// StateKind enumerates the coarse states of a paginated list screen
type StateKind int

const (
	// StateNoResultsPlaceholder means the cache is empty and no sync is running
	StateNoResultsPlaceholder StateKind = iota
	// StateSyncing means a page is being fetched
	StateSyncing
	// StateResults means the cache has rows to show
	StateResults
)

func (k StateKind) String() string {
	switch k {
	case StateNoResultsPlaceholder:
		return "placeholder"
	case StateSyncing:
		return "syncing"
	case StateResults:
		return "results"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// State is a screen state. PageNumber is only meaningful for StateSyncing.
type State struct {
	Kind       StateKind
	PageNumber int
}

// SyncingState returns the state for a fetch of page
func SyncingState(page int) State {
	return State{Kind: StateSyncing, PageNumber: page}
}

// IsFirstPage reports whether this is a sync of the first page, which the
// screen shows as full-screen placeholder rows rather than a footer spinner.
func (s State) IsFirstPage() bool {
	return s.Kind == StateSyncing && s.PageNumber == PageFirstIndex
}

func (s State) String() string {
	if s.Kind == StateSyncing {
		return fmt.Sprintf("syncing(%d)", s.PageNumber)
	}
	return s.Kind.String()
}

// Results is a read-only view of the locally cached rows backing a screen
type Results interface {
	IsEmpty() bool
	Count() int
}

// Hooks are called on every state change, OnLeaving first
type Hooks struct {
	OnLeaving  func(State)
	OnEntering func(State)
}

// StateMachine tracks which of the three screen states is current.
// It holds no business data; the screen reacts to transitions via Hooks.
type StateMachine struct {
	state   State
	results Results
	hooks   Hooks
}

// NewStateMachine starts in StateResults when results has rows, otherwise
// in StateNoResultsPlaceholder. No hooks fire for the initial state.
func NewStateMachine(results Results, hooks Hooks) *StateMachine {
	m := &StateMachine{results: results, hooks: hooks}
	m.state = m.settledState()
	return m
}

// State returns the current state
func (m *StateMachine) State() State {
	return m.state
}

// TransitionToSyncing moves to Syncing(page)
func (m *StateMachine) TransitionToSyncing(page int) {
	m.transition(SyncingState(page))
}

// TransitionToResultsUpdated is called after a sync finishes, successfully or not
func (m *StateMachine) TransitionToResultsUpdated() {
	m.transition(m.settledState())
}

func (m *StateMachine) settledState() State {
	if m.results == nil || m.results.IsEmpty() {
		return State{Kind: StateNoResultsPlaceholder}
	}
	return State{Kind: StateResults}
}

func (m *StateMachine) transition(to State) {
	if to == m.state {
		return
	}
	from := m.state
	if m.hooks.OnLeaving != nil {
		m.hooks.OnLeaving(from)
	}
	m.state = to
	if m.hooks.OnEntering != nil {
		m.hooks.OnEntering(to)
	}
}

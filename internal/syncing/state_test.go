package syncing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeResults struct{ count int }

func (r *fakeResults) IsEmpty() bool { return r.count == 0 }
func (r *fakeResults) Count() int    { return r.count }

type transitionLog struct {
	events []string
}

func (l *transitionLog) hooks() Hooks {
	return Hooks{
		OnLeaving:  func(s State) { l.events = append(l.events, "leave "+s.String()) },
		OnEntering: func(s State) { l.events = append(l.events, "enter "+s.String()) },
	}
}

func TestNewStateMachine_InitialState(t *testing.T) {
	var log transitionLog

	m := NewStateMachine(&fakeResults{}, log.hooks())
	assert.Equal(t, StateNoResultsPlaceholder, m.State().Kind)

	m = NewStateMachine(&fakeResults{count: 3}, log.hooks())
	assert.Equal(t, StateResults, m.State().Kind)

	assert.Empty(t, log.events)
}

func TestStateMachine_LeavingPrecedesEntering(t *testing.T) {
	var log transitionLog
	results := &fakeResults{}
	m := NewStateMachine(results, log.hooks())

	m.TransitionToSyncing(1)
	results.count = 25
	m.TransitionToResultsUpdated()

	assert.Equal(t, []string{
		"leave placeholder",
		"enter syncing(1)",
		"leave syncing(1)",
		"enter results",
	}, log.events)
}

func TestStateMachine_SelfTransitionFiresNothing(t *testing.T) {
	var log transitionLog
	m := NewStateMachine(&fakeResults{count: 1}, log.hooks())

	m.TransitionToResultsUpdated()
	assert.Empty(t, log.events)

	m.TransitionToSyncing(2)
	m.TransitionToSyncing(2)
	assert.Equal(t, []string{"leave results", "enter syncing(2)"}, log.events)

	m.TransitionToSyncing(3)
	assert.Equal(t, []string{
		"leave results", "enter syncing(2)",
		"leave syncing(2)", "enter syncing(3)",
	}, log.events)
}

func TestStateMachine_FailedSyncWithEmptyCache(t *testing.T) {
	m := NewStateMachine(&fakeResults{}, Hooks{})

	m.TransitionToSyncing(1)
	m.TransitionToResultsUpdated()
	assert.Equal(t, State{Kind: StateNoResultsPlaceholder}, m.State())
}

func TestStateMachine_StateVisibleInsideHooks(t *testing.T) {
	var m *StateMachine
	var duringLeave, duringEnter State
	m = NewStateMachine(&fakeResults{}, Hooks{
		OnLeaving:  func(State) { duringLeave = m.State() },
		OnEntering: func(State) { duringEnter = m.State() },
	})

	m.TransitionToSyncing(1)
	assert.Equal(t, StateNoResultsPlaceholder, duringLeave.Kind)
	assert.Equal(t, SyncingState(1), duringEnter)
}

func TestState_IsFirstPage(t *testing.T) {
	assert.True(t, SyncingState(1).IsFirstPage())
	assert.False(t, SyncingState(2).IsFirstPage())
	assert.False(t, State{Kind: StateResults}.IsFirstPage())
}

// The coordinator and state machine driven together the way a list screen does.
func TestScreenScenarios(t *testing.T) {
	type screen struct {
		delegate *fakeDelegate
		results  *fakeResults
		coord    *Coordinator
		machine  *StateMachine
	}
	newScreen := func(cached int) *screen {
		s := &screen{results: &fakeResults{count: cached}}
		s.delegate = newFakeDelegate()
		s.machine = NewStateMachine(s.results, Hooks{})
		s.coord = newTestCoordinator(DelegateFunc(func(req PageRequest, done func(error)) {
			s.machine.TransitionToSyncing(req.PageNumber)
			s.delegate.Sync(req, func(err error) {
				if err == nil {
					s.results.count = req.Offset() + req.PageSize
				}
				done(err)
				s.machine.TransitionToResultsUpdated()
			})
		}))
		return s
	}

	t.Run("first page into empty cache", func(t *testing.T) {
		s := newScreen(0)
		assert.True(t, s.coord.EnsureNextPageIsSynchronized(0))
		assert.Equal(t, SyncingState(1), s.machine.State())

		s.delegate.complete(t, 1, nil)
		assert.Equal(t, StateResults, s.machine.State().Kind)
		assert.True(t, s.coord.IsPageSynced(1))
	})

	t.Run("last row of page one fetches page two", func(t *testing.T) {
		s := newScreen(0)
		s.coord.SynchronizeFirstPage(nil)
		s.delegate.complete(t, 1, nil)

		assert.True(t, s.coord.EnsureNextPageIsSynchronized(24))
		assert.Equal(t, SyncingState(2), s.machine.State())

		assert.False(t, s.coord.EnsureNextPageIsSynchronized(10))
		assert.Equal(t, []int{1, 2}, s.delegate.pages())
	})

	t.Run("page two failure returns to results and retries", func(t *testing.T) {
		s := newScreen(0)
		s.coord.SynchronizeFirstPage(nil)
		s.delegate.complete(t, 1, nil)
		s.coord.EnsureNextPageIsSynchronized(24)

		s.delegate.complete(t, 2, errOffline)
		assert.Equal(t, StateResults, s.machine.State().Kind)
		assert.False(t, s.coord.IsPageSynced(2))

		assert.True(t, s.coord.EnsureNextPageIsSynchronized(24))
		assert.Equal(t, []int{1, 2, 2}, s.delegate.pages())
	})
}

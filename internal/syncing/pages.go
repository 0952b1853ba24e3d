package syncing

// pageTracker records which pages are in flight and which are fully synced.
// It is owned by a single Coordinator and never shared.
type pageTracker struct {
	inFlight map[int]struct{}
	synced   map[int]struct{}

	// epoch advances on every reset; completions carry the epoch they
	// were issued under so fetches started before a resync can't mark pages.
	epoch uint64
}

func newPageTracker() *pageTracker {
	return &pageTracker{
		inFlight: make(map[int]struct{}),
		synced:   make(map[int]struct{}),
	}
}

// begin marks page as in flight. Returns false if it already is.
func (t *pageTracker) begin(page int) bool {
	if _, ok := t.inFlight[page]; ok {
		return false
	}
	t.inFlight[page] = struct{}{}
	return true
}

// finish records the outcome of a fetch issued under epoch.
// Returns false (and changes nothing) when the epoch is stale.
func (t *pageTracker) finish(page int, epoch uint64, ok bool) bool {
	if epoch != t.epoch {
		return false
	}
	delete(t.inFlight, page)
	if ok {
		t.synced[page] = struct{}{}
	}
	return true
}

func (t *pageTracker) isInFlight(page int) bool {
	_, ok := t.inFlight[page]
	return ok
}

func (t *pageTracker) isSynced(page int) bool {
	_, ok := t.synced[page]
	return ok
}

// highest returns the highest page currently in flight
func (t *pageTracker) highest() (int, bool) {
	highest, found := 0, false
	for page := range t.inFlight {
		if !found || page > highest {
			highest, found = page, true
		}
	}
	return highest, found
}

func (t *pageTracker) reset() {
	clear(t.inFlight)
	clear(t.synced)
	t.epoch++
}

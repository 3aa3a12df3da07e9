package search

// ActionState is the progress of a per-row action (open map, contact)
type ActionState int

const (
	ActionIdle ActionState = iota
	ActionPending
	ActionError
)

func (s ActionState) String() string {
	switch s {
	case ActionIdle:
		return "idle"
	case ActionPending:
		return "pending"
	case ActionError:
		return "error"
	}
	return "unknown"
}

type actionEntry struct {
	state ActionState
	err   error
}

// ActionTracker holds independent action states keyed by entity key.
// Rows without an entry are idle.
type ActionTracker struct {
	entries map[string]actionEntry
}

// NewActionTracker creates an empty tracker
func NewActionTracker() *ActionTracker {
	return &ActionTracker{entries: make(map[string]actionEntry)}
}

// Begin marks key pending. It returns false if an action is already pending.
func (t *ActionTracker) Begin(key string) bool {
	if t.entries[key].state == ActionPending {
		return false
	}
	t.entries[key] = actionEntry{state: ActionPending}
	return true
}

// Done records the outcome of the action for key
func (t *ActionTracker) Done(key string, err error) {
	if err != nil {
		t.entries[key] = actionEntry{state: ActionError, err: err}
		return
	}
	delete(t.entries, key)
}

// State returns the action state for key
func (t *ActionTracker) State(key string) ActionState {
	return t.entries[key].state
}

// Err returns the last error for key
func (t *ActionTracker) Err(key string) error {
	return t.entries[key].err
}

// Reset returns key to idle
func (t *ActionTracker) Reset(key string) {
	delete(t.entries, key)
}

// Pending counts rows with an action in flight
func (t *ActionTracker) Pending() int {
	n := 0
	for _, e := range t.entries {
		if e.state == ActionPending {
			n++
		}
	}
	return n
}

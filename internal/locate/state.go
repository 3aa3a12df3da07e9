package locate

import "github.com/sokoni-market/sokoni-cli/internal/geo"

// Status is the phase of the session's geolocation request
type Status int

const (
	Idle Status = iota
	Locating
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Locating:
		return "locating"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// State is a snapshot of the geolocation request
type State struct {
	Status     Status
	Coordinate *geo.Coordinate // set when Succeeded
	Reason     FailureReason   // set when Failed
}

// Label renders the state for a status line
func (s State) Label() string {
	switch s.Status {
	case Locating:
		return "Locating…"
	case Succeeded:
		return "Near " + s.Coordinate.String()
	case Failed:
		return s.Reason.Message()
	}
	return ""
}

// Tracker holds the session's most recent known coordinate. It has a
// single writer (the acquisition flow or Clear) and is not synchronized.
type Tracker struct {
	state State
}

// State returns the current snapshot
func (t *Tracker) State() State {
	return t.state
}

// Coordinate returns the last acquired coordinate, or nil
func (t *Tracker) Coordinate() *geo.Coordinate {
	if t.state.Status != Succeeded {
		return nil
	}
	return t.state.Coordinate
}

// Begin moves to Locating
func (t *Tracker) Begin() State {
	t.state = State{Status: Locating}
	return t.state
}

// Finish records the outcome of an acquisition
func (t *Tracker) Finish(r Result) State {
	if r.OK() {
		t.state = State{Status: Succeeded, Coordinate: r.Coordinate}
	} else {
		t.state = State{Status: Failed, Reason: r.Reason}
	}
	return t.state
}

// Set records a coordinate that did not come from the acquirer
// (e.g. typed by the user)
func (t *Tracker) Set(c geo.Coordinate) {
	t.state = State{Status: Succeeded, Coordinate: c.Ptr()}
}

// Clear forgets the coordinate and returns to Idle
func (t *Tracker) Clear() {
	t.state = State{}
}

package scorecard

import "fmt"

// State is a step in the read lifecycle.
type State int

const (
	StateIdle State = iota
	StateDetecting
	StateDetectionFailed
	StateExtracting
	StateExtractionSucceeded
	StateExtractionPartial
	StateExtractionFailed
	StateManualEntryRequested
)

var stateNames = map[State]string{
	StateIdle:                 "idle",
	StateDetecting:            "detecting",
	StateDetectionFailed:      "detection_failed",
	StateExtracting:           "extracting",
	StateExtractionSucceeded:  "extraction_succeeded",
	StateExtractionPartial:    "extraction_partial",
	StateExtractionFailed:     "extraction_failed",
	StateManualEntryRequested: "manual_entry_requested",
}

var transitions = map[State][]State{
	StateIdle:                {StateDetecting},
	StateDetecting:           {StateDetectionFailed, StateExtracting},
	StateDetectionFailed:     {StateManualEntryRequested},
	StateExtracting:          {StateExtractionSucceeded, StateExtractionPartial, StateExtractionFailed},
	StateExtractionPartial:   {StateManualEntryRequested},
	StateExtractionFailed:    {StateManualEntryRequested},
	StateExtractionSucceeded: nil,
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for k, v := range stateNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// CanTransition reports whether next may follow s.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type machine struct {
	state State
	tr    *Trace
}

func newMachine(start State, tr *Trace) *machine {
	return &machine{state: start, tr: tr}
}

// to advances the machine. Invalid transitions are recorded and ignored.
func (m *machine) to(next State) bool {
	if !m.state.CanTransition(next) {
		m.tr.Addf("state: invalid transition %s -> %s ignored", m.state, next)
		return false
	}
	m.tr.Addf("state: %s -> %s", m.state, next)
	m.state = next
	return true
}

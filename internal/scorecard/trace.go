package scorecard

import "fmt"

// Trace collects human-readable decisions made during a single extraction.
// A Trace belongs to one call; it is never shared.
type Trace struct {
	lines []string
}

// Addf appends a formatted line. A nil Trace discards it.
func (t *Trace) Addf(format string, args ...any) {
	if t == nil {
		return
	}
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the recorded lines.
func (t *Trace) Lines() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Len returns the number of recorded lines.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

package scorecard

import "fmt"

// Route tells the caller whether to prompt for manual score entry.
type Route string

const (
	RouteSucceeded Route = "succeeded"
	RoutePartial   Route = "partial"
	RouteFailed    Route = "failed"
)

// ExtractionResult is the structured outcome of one read.
type ExtractionResult struct {
	PlayerName  string       `json:"player_name,omitempty"`
	Scores      []Score      `json:"scores"`
	Strategy    Strategy     `json:"strategy"`
	Confidence  []Confidence `json:"confidence"`
	ValidScores int          `json:"valid_scores"`
	State       State        `json:"state"`
	Failure     FailureCode  `json:"failure,omitempty"`
	Trace       []string     `json:"trace"`

	requested string
	cause     error
}

// Route summarizes the outcome independent of any manual-entry request.
func (r *ExtractionResult) Route() Route {
	switch {
	case r.ValidScores == MaxHoles && r.Failure == FailureNone:
		return RouteSucceeded
	case r.ValidScores > 0:
		return RoutePartial
	default:
		return RouteFailed
	}
}

// NeedsManualEntry reports whether the caller should ask the user to fill in
// or confirm scores.
func (r *ExtractionResult) NeedsManualEntry() bool {
	return r.Route() != RouteSucceeded
}

// Err returns nil on full success, ErrPartialExtraction on a partial result
// and the failure otherwise. All returned errors match their sentinels with
// errors.Is.
func (r *ExtractionResult) Err() error {
	if r.Failure == FailureNone {
		return nil
	}
	return newExtractionError(r.Failure, r.requested, r.cause)
}

// RequestManualEntry moves a partial or failed result to
// StateManualEntryRequested.
func (r *ExtractionResult) RequestManualEntry() error {
	if !r.State.CanTransition(StateManualEntryRequested) {
		return fmt.Errorf("cannot request manual entry from state %s", r.State)
	}
	r.Trace = append(r.Trace, fmt.Sprintf("state: %s -> %s", r.State, StateManualEntryRequested))
	r.State = StateManualEntryRequested
	return nil
}

// assemble turns the selector's outcome into a result and moves the machine
// to its extraction end state.
func assemble(a *ExtractionAttempt, kind Strategy, failure FailureCode, player string, m *machine, tr *Trace) *ExtractionResult {
	res := &ExtractionResult{
		Scores:     []Score{},
		Confidence: []Confidence{},
		Strategy:   StrategyNone,
		Failure:    failure,
		requested:  player,
	}
	if a != nil {
		scores, conf := a.Scores, a.Confidence
		if len(scores) > MaxHoles {
			tr.Addf("result: truncating %d scores to %d", len(scores), MaxHoles)
			scores = scores[:MaxHoles]
		}
		res.Scores = make([]Score, len(scores))
		res.Confidence = make([]Confidence, len(scores))
		for i, s := range scores {
			if !s.Known() {
				res.Scores[i] = Unknown
				res.Confidence[i] = ConfidenceNone
				continue
			}
			res.Scores[i] = s
			if i < len(conf) {
				res.Confidence[i] = conf[i]
			}
		}
		res.PlayerName = a.PlayerName
		res.Strategy = kind
		res.ValidScores = countKnown(res.Scores)
	}

	switch {
	case res.ValidScores == MaxHoles:
		res.Failure = FailureNone
		m.to(StateExtractionSucceeded)
	case res.ValidScores > 0:
		res.Failure = FailurePartialExtraction
		tr.Addf("result: %d of %d scores recovered", res.ValidScores, MaxHoles)
		m.to(StateExtractionPartial)
	default:
		if res.Failure == FailureNone || res.Failure == FailurePartialExtraction {
			res.Failure = FailureNoScoresDetected
		}
		m.to(StateExtractionFailed)
	}
	res.State = m.state
	res.Trace = tr.Lines()
	return res
}

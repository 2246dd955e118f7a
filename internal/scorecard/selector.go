package scorecard

// Aligner is one self-contained extraction strategy. Attempt must be pure:
// everything it learns goes to the returned attempt or the trace.
type Aligner interface {
	Kind() Strategy
	Attempt(obs []TextObservation, player string, cfg Config, tr *Trace) (*ExtractionAttempt, bool)
}

// DefaultAligners returns the strategies in priority order:
// grid, column, cluster, row fallback.
func DefaultAligners() []Aligner {
	return []Aligner{gridAligner{}, columnAligner{}, clusterAligner{}, rowFallback{}}
}

// Selector tries aligners in order and keeps the first accepted attempt.
type Selector struct {
	aligners []Aligner
}

// NewSelector builds a selector over the given aligners. With none it uses
// DefaultAligners.
func NewSelector(aligners ...Aligner) *Selector {
	if len(aligners) == 0 {
		aligners = DefaultAligners()
	}
	return &Selector{aligners: aligners}
}

// Select returns the first accepted attempt and the strategy that made it.
// When the player is absent no aligner runs.
func (s *Selector) Select(obs []TextObservation, player string, cfg Config, tr *Trace) (*ExtractionAttempt, Strategy, FailureCode) {
	if _, ok := LocatePlayer(obs, player); !ok {
		tr.Addf("selector: player %q not found in %d observations", player, len(obs))
		return nil, StrategyNone, FailurePlayerNotFound
	}
	for _, a := range s.aligners {
		if attempt, ok := a.Attempt(obs, player, cfg, tr); ok {
			tr.Addf("selector: using %s", a.Kind())
			return attempt, a.Kind(), FailureNone
		}
	}
	tr.Addf("selector: every strategy rejected")
	return nil, StrategyNone, FailureNoScoresDetected
}

// Extract runs the selector over observations that were already detected.
func (s *Selector) Extract(obs []TextObservation, player string, cfg Config) *ExtractionResult {
	tr := &Trace{}
	return s.extract(obs, player, cfg, tr, newMachine(StateExtracting, tr))
}

func (s *Selector) extract(obs []TextObservation, player string, cfg Config, tr *Trace, m *machine) *ExtractionResult {
	tr.Addf("extract: %d observations for player %q", len(obs), player)
	attempt, kind, failure := s.Select(obs, player, cfg, tr)
	return assemble(attempt, kind, failure, player, m, tr)
}

// Extract reconstructs the player's scores from observations using the
// default strategies.
func Extract(obs []TextObservation, player string, cfg Config) *ExtractionResult {
	return NewSelector().Extract(obs, player, cfg)
}

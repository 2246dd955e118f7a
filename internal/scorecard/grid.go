package scorecard

import "math"

// gridAligner matches the player's row against the detected header columns.
type gridAligner struct{}

func (gridAligner) Kind() Strategy { return StrategyGrid }

// Attempt runs the three matching passes:
//
//  1. direct: nearest unused candidate within GridDirectTolerance (High)
//  2. inference: nearest unused candidate at any distance (Medium)
//  3. last resort: leftover candidates, left to right, into the remaining
//     holes in hole order (Low)
//
// Holes still unmatched stay Unknown. The output always has 18 entries with
// hole n at index n-1.
func (gridAligner) Attempt(obs []TextObservation, player string, cfg Config, tr *Trace) (*ExtractionAttempt, bool) {
	idx, ok := LocatePlayer(obs, player)
	if !ok {
		tr.Addf("grid: player %q not found", player)
		return nil, false
	}
	hdr := detectHeader(obs, cfg, tr)
	cols := hdr.cols
	if cols == nil {
		tr.Addf("grid: no usable header row")
		return nil, false
	}
	cands := rowCandidates(obs, idx, cfg.GridRowBand, hdr.excludes, tr)
	tr.Addf("grid: %d candidates within %.3f of row y=%.3f", len(cands), cfg.GridRowBand, obs[idx].MidY())

	scores := make([]Score, MaxHoles)
	conf := make([]Confidence, MaxHoles)
	used := make([]bool, len(cands))
	assign := func(hole, j int, c Confidence, pass string, dx float64) {
		used[j] = true
		scores[hole-1] = Score(cands[j].Value)
		conf[hole-1] = c
		tr.Addf("grid: hole %d <- %d (%s, dx=%.4f)", hole, cands[j].Value, pass, dx)
	}

	for _, col := range cols {
		j, dx := nearestUnused(cands, used, col.X)
		if j >= 0 && dx <= cfg.GridDirectTolerance {
			assign(col.Hole, j, ConfidenceHigh, "direct", dx)
		}
	}
	for _, col := range cols {
		if scores[col.Hole-1].Known() {
			continue
		}
		if j, dx := nearestUnused(cands, used, col.X); j >= 0 {
			assign(col.Hole, j, ConfidenceMedium, "inferred", dx)
		}
	}
	j := 0
	for hole := 1; hole <= MaxHoles; hole++ {
		if scores[hole-1].Known() {
			continue
		}
		for j < len(cands) && used[j] {
			j++
		}
		if j == len(cands) {
			break
		}
		assign(hole, j, ConfidenceLow, "last resort", math.NaN())
	}

	known := countKnown(scores)
	need := cfg.GridMinScores
	if len(cols) < need {
		need = len(cols)
	}
	if known < need {
		tr.Addf("grid: rejected, %d scores < %d", known, need)
		return nil, false
	}
	tr.Addf("grid: accepted %d scores", known)
	return &ExtractionAttempt{
		PlayerName: trimmedName(obs[idx]),
		Scores:     scores,
		Confidence: conf,
		Source:     obs[idx],
	}, true
}

// nearestUnused returns the index of the unused candidate closest to x and its
// distance, or -1. Ties go to the leftmost candidate.
func nearestUnused(cands []ScoreCandidate, used []bool, x float64) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for i, c := range cands {
		if used[i] {
			continue
		}
		if d := math.Abs(c.X - x); d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

package scorecard

import (
	"math"
	"sort"
)

// columnAligner is the looser header match used when the grid aligner
// rejects: hole tokens are taken from anywhere in the upper half without
// row clustering, and holes without a match are dropped from the output
// instead of padded.
type columnAligner struct{}

func (columnAligner) Kind() Strategy { return StrategyColumn }

func (columnAligner) Attempt(obs []TextObservation, player string, cfg Config, tr *Trace) (*ExtractionAttempt, bool) {
	idx, ok := LocatePlayer(obs, player)
	if !ok {
		tr.Addf("column: player %q not found", player)
		return nil, false
	}
	rowY := obs[idx].MidY()

	// First occurrence of each hole number wins. The player's own row is
	// skipped so scores are never read back as headers.
	holeX := make(map[int]float64)
	sources := make(map[int]bool)
	for i, o := range obs {
		if i == idx || o.MidY() < cfg.ColumnHeaderMinY || math.Abs(o.MidY()-rowY) <= cfg.ColumnRowBand {
			continue
		}
		for _, p := range holeTokens(o, nil) {
			if _, seen := holeX[p.value]; !seen {
				holeX[p.value] = p.x
				sources[i] = true
			}
		}
	}
	if len(holeX) == 0 {
		tr.Addf("column: no hole tokens above y=%.2f", cfg.ColumnHeaderMinY)
		return nil, false
	}
	holes := make([]int, 0, len(holeX))
	for h := range holeX {
		holes = append(holes, h)
	}
	sort.Ints(holes)

	// A header row close enough to the player's row to fall inside the band is
	// still a header.
	hdr := detectHeader(obs, cfg, nil)
	skip := func(i int, y float64) bool { return sources[i] || hdr.excludes(i, y) }
	cands := rowCandidates(obs, idx, cfg.ColumnRowBand, skip, tr)
	used := make([]bool, len(cands))
	var scores []Score
	var conf []Confidence
	for _, hole := range holes {
		j, dx := nearestUnused(cands, used, holeX[hole])
		if j < 0 || dx > cfg.ColumnAlignTolerance {
			continue
		}
		used[j] = true
		scores = append(scores, Score(cands[j].Value))
		conf = append(conf, ConfidenceMedium)
		tr.Addf("column: hole %d <- %d (dx=%.4f)", hole, cands[j].Value, dx)
	}

	if need := cfg.ColumnMinScores(); len(scores) < need {
		tr.Addf("column: rejected, %d scores < %d", len(scores), need)
		return nil, false
	}
	tr.Addf("column: accepted %d scores", len(scores))
	return &ExtractionAttempt{
		PlayerName: trimmedName(obs[idx]),
		Scores:     scores,
		Confidence: conf,
		Source:     obs[idx],
	}, true
}

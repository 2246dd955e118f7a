package scorecard

import (
	"math"
	"sort"
	"strings"
)

// rowFallback is the last resort: text on exactly the player's row, right of
// the name, concatenated and tokenized. Any non-empty result is accepted so
// the caller has something to confirm by hand.
type rowFallback struct{}

func (rowFallback) Kind() Strategy { return StrategyRowFallback }

func (rowFallback) Attempt(obs []TextObservation, player string, cfg Config, tr *Trace) (*ExtractionAttempt, bool) {
	idx, ok := LocatePlayer(obs, player)
	if !ok {
		tr.Addf("row fallback: player %q not found", player)
		return nil, false
	}
	name := obs[idx]

	var row []TextObservation
	for i, o := range obs {
		if i == idx || o.X <= name.X {
			continue
		}
		if math.Abs(o.MidY()-name.MidY()) <= cfg.RowFallbackTolerance {
			row = append(row, o)
		}
	}
	sort.SliceStable(row, func(a, b int) bool { return row[a].X < row[b].X })

	texts := make([]string, len(row))
	for i, o := range row {
		texts[i] = o.Text
	}
	joined := strings.Join(texts, " ")
	tr.Addf("row fallback: %d observations on row: %q", len(row), joined)

	values := ParseScores(joined, tr)
	if cfg.DedupeRowFallback {
		values = dedupe(values)
		tr.Addf("row fallback: %d values after dedupe", len(values))
	}
	if len(values) > MaxHoles {
		tr.Addf("row fallback: %d values, keeping first %d", len(values), MaxHoles)
		values = values[:MaxHoles]
	}
	if len(values) == 0 {
		tr.Addf("row fallback: no scores")
		return nil, false
	}

	scores := make([]Score, len(values))
	conf := make([]Confidence, len(values))
	for i, v := range values {
		scores[i] = Score(v)
		conf[i] = ConfidenceLow
	}
	tr.Addf("row fallback: accepted %d scores", len(scores))
	return &ExtractionAttempt{
		PlayerName: trimmedName(name),
		Scores:     scores,
		Confidence: conf,
		Source:     name,
	}, true
}

func dedupe(values []int) []int {
	seen := make(map[int]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

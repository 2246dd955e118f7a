package scorecard

import (
	"math"
	"sort"
)

// clusterAligner makes no header assumption. It groups observations into rows
// by y and reads the player's row left to right.
type clusterAligner struct{}

func (clusterAligner) Kind() Strategy { return StrategyCluster }

func (clusterAligner) Attempt(obs []TextObservation, player string, cfg Config, tr *Trace) (*ExtractionAttempt, bool) {
	idx, ok := LocatePlayer(obs, player)
	if !ok {
		tr.Addf("cluster: player %q not found", player)
		return nil, false
	}
	rows := clusterRows(obs, cfg.ClusterTolerance)
	tr.Addf("cluster: %d rows at tolerance %.3f", len(rows), cfg.ClusterTolerance)

	var row []int
	for _, r := range rows {
		for _, i := range r {
			if i == idx {
				row = r
			}
		}
	}

	name := obs[idx]
	var cands []ScoreCandidate
	for _, i := range row {
		if i == idx {
			continue
		}
		for _, p := range scoreTokens(obs[i], tr) {
			if p.x > name.X {
				cands = append(cands, ScoreCandidate{Value: p.value, X: p.x, Y: p.y})
			}
		}
	}
	sortCandidates(cands)
	if len(cands) > MaxHoles {
		tr.Addf("cluster: %d tokens, keeping first %d", len(cands), MaxHoles)
		cands = cands[:MaxHoles]
	}

	if len(cands) < cfg.ClusterMinScores {
		tr.Addf("cluster: rejected, %d scores < %d", len(cands), cfg.ClusterMinScores)
		return nil, false
	}
	scores := make([]Score, len(cands))
	conf := make([]Confidence, len(cands))
	for i, c := range cands {
		scores[i] = Score(c.Value)
		conf[i] = ConfidenceLow
	}
	tr.Addf("cluster: accepted %d scores", len(scores))
	return &ExtractionAttempt{
		PlayerName: trimmedName(name),
		Scores:     scores,
		Confidence: conf,
		Source:     name,
	}, true
}

// clusterRows groups observation indices by mid-y. Observations are visited
// bottom to top (input order on ties); a new row starts when one lies further
// than tol from the running mean of the current row.
func clusterRows(obs []TextObservation, tol float64) [][]int {
	order := make([]int, len(obs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return obs[order[a]].MidY() < obs[order[b]].MidY() })

	var rows [][]int
	var cur []int
	var sum float64
	for _, i := range order {
		y := obs[i].MidY()
		if len(cur) > 0 && math.Abs(y-sum/float64(len(cur))) > tol {
			rows = append(rows, cur)
			cur, sum = nil, 0
		}
		cur = append(cur, i)
		sum += y
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}
	return rows
}

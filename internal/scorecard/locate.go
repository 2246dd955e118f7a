package scorecard

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lower-cases s and strips combining accents so "José" matches "jose".
func foldName(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// LocatePlayer returns the index of the first observation whose text contains
// name, ignoring case and accents. Ties go to input order.
func LocatePlayer(obs []TextObservation, name string) (int, bool) {
	want := foldName(name)
	if want == "" {
		return -1, false
	}
	for i, o := range obs {
		if strings.Contains(foldName(o.Text), want) {
			return i, true
		}
	}
	return -1, false
}

// DetectHoleHeader finds the hole-number header row.
//
// Tokens 1..18 inside [HeaderMinY, HeaderMaxY] are kept when they sit within
// HeaderRowTolerance of the band's mean y. When a hole number appears twice
// the token nearest the mean wins, then the leftmost. Returns nil when fewer
// than MinHeaderHoles survive.
func DetectHoleHeader(obs []TextObservation, cfg Config, tr *Trace) []HoleColumn {
	return detectHeader(obs, cfg, tr).cols
}

// headerRow is an accepted header: its columns, the observations they came
// from and the columns' mean y.
type headerRow struct {
	cols    []HoleColumn
	sources map[int]bool
	y       float64
	tol     float64
}

// excludes reports whether observation i, or a token of it at y, belongs to
// the header row and so can never be a score.
func (h headerRow) excludes(i int, y float64) bool {
	if h.cols == nil {
		return false
	}
	return h.sources[i] || math.Abs(y-h.y) <= h.tol
}

func detectHeader(obs []TextObservation, cfg Config, tr *Trace) headerRow {
	type sourced struct {
		positioned
		src int
	}
	var band []sourced
	for i, o := range obs {
		y := o.MidY()
		if y < cfg.HeaderMinY || y > cfg.HeaderMaxY {
			continue
		}
		for _, p := range holeTokens(o, nil) {
			band = append(band, sourced{p, i})
		}
	}
	if len(band) == 0 {
		tr.Addf("header: no hole tokens in y [%.3f, %.3f]", cfg.HeaderMinY, cfg.HeaderMaxY)
		return headerRow{}
	}

	var sum float64
	for _, p := range band {
		sum += p.y
	}
	mean := sum / float64(len(band))

	best := make(map[int]sourced)
	for _, p := range band {
		if math.Abs(p.y-mean) > cfg.HeaderRowTolerance {
			tr.Addf("header: hole %d at y=%.3f dropped, mean row y=%.3f", p.value, p.y, mean)
			continue
		}
		cur, ok := best[p.value]
		if !ok || closerHeader(p.positioned, cur.positioned, mean) {
			best[p.value] = p
		}
	}

	row := headerRow{sources: make(map[int]bool, len(best)), tol: cfg.HeaderRowTolerance}
	for hole, p := range best {
		row.cols = append(row.cols, HoleColumn{Hole: hole, X: p.x, Y: p.y})
		row.sources[p.src] = true
	}
	sort.Slice(row.cols, func(i, j int) bool { return row.cols[i].Hole < row.cols[j].Hole })

	if len(row.cols) < cfg.MinHeaderHoles {
		tr.Addf("header: %d holes found, need %d", len(row.cols), cfg.MinHeaderHoles)
		return headerRow{}
	}
	var ySum float64
	for _, c := range row.cols {
		ySum += c.Y
	}
	row.y = ySum / float64(len(row.cols))
	tr.Addf("header: %d holes at mean y=%.3f", len(row.cols), row.y)
	return row
}

func closerHeader(a, b positioned, mean float64) bool {
	da, db := math.Abs(a.y-mean), math.Abs(b.y-mean)
	if da != db {
		return da < db
	}
	return a.x < b.x
}

// rowCandidates collects score tokens within band of the player's row and to
// the right of the player's name. The name observation itself is skipped, as
// is any token skip rejects (skip may be nil). Result is sorted left to right.
func rowCandidates(obs []TextObservation, player int, band float64, skip func(i int, y float64) bool, tr *Trace) []ScoreCandidate {
	name := obs[player]
	rowY := name.MidY()
	var out []ScoreCandidate
	for i, o := range obs {
		if i == player {
			continue
		}
		if math.Abs(o.MidY()-rowY) > band {
			continue
		}
		for _, p := range scoreTokens(o, tr) {
			if p.x <= name.X {
				continue
			}
			if skip != nil && skip(i, p.y) {
				tr.Addf("candidate %d at x=%.3f skipped: header row", p.value, p.x)
				continue
			}
			out = append(out, ScoreCandidate{Value: p.value, X: p.x, Y: p.y})
		}
	}
	sortCandidates(out)
	return out
}

func sortCandidates(c []ScoreCandidate) {
	sort.SliceStable(c, func(i, j int) bool { return c[i].X < c[j].X })
}

func trimmedName(o TextObservation) string {
	return strings.Join(strings.Fields(o.Text), " ")
}

package scorecard

import "strconv"

// at returns a 0.02x0.02 observation centred on (x, y).
func at(text string, x, y float64) TextObservation {
	return TextObservation{Text: text, X: x - 0.01, Y: y - 0.01, Width: 0.02, Height: 0.02}
}

// nameAt returns a player-name observation whose mid-line is y, starting at
// x=0.01 so every score column lies to its right.
func nameAt(name string, y float64) TextObservation {
	return TextObservation{Text: name, X: 0.01, Y: y - 0.01, Width: 0.06, Height: 0.02}
}

// holeX spaces 18 columns across the card.
func holeX(hole int) float64 {
	return 0.10 + 0.045*float64(hole-1)
}

// header returns hole-number tokens 1..n at y.
func header(n int, y float64) []TextObservation {
	obs := make([]TextObservation, 0, n)
	for h := 1; h <= n; h++ {
		obs = append(obs, at(strconv.Itoa(h), holeX(h), y))
	}
	return obs
}

// scoreRow places values under holes 1..len(values) at y.
func scoreRow(values []int, y float64) []TextObservation {
	obs := make([]TextObservation, 0, len(values))
	for i, v := range values {
		obs = append(obs, at(strconv.Itoa(v), holeX(i+1), y))
	}
	return obs
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func cardWith(parts ...[]TextObservation) []TextObservation {
	var obs []TextObservation
	for _, p := range parts {
		obs = append(obs, p...)
	}
	return obs
}

func scores(values ...int) []Score {
	out := make([]Score, len(values))
	for i, v := range values {
		out[i] = Score(v)
	}
	return out
}

func padUnknown(s []Score, n int) []Score {
	out := make([]Score, n)
	copy(out, s)
	return out
}

// scenarioA is a four-hole header with Smith's four scores directly below.
func scenarioA() []TextObservation {
	return []TextObservation{
		at("1", 0.10, 0.55),
		at("2", 0.20, 0.55),
		at("3", 0.30, 0.55),
		at("4", 0.40, 0.55),
		nameAt("Smith", 0.30),
		at("4", 0.10, 0.30),
		at("5", 0.20, 0.30),
		at("3", 0.30, 0.30),
		at("4", 0.40, 0.30),
	}
}

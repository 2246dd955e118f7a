// Package scorecardtest builds synthetic detector output for tests outside
// the scorecard package.
package scorecardtest

import (
	"strconv"

	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// Layout positions used by Card.
const (
	HeaderY = 0.55
	PlayerY = 0.40
)

// HoleX is the column centre of hole h (1-based).
func HoleX(h int) float64 {
	return 0.10 + 0.045*float64(h-1)
}

// At returns a 0.02x0.02 observation centred on (x, y).
func At(text string, x, y float64) scorecard.TextObservation {
	return scorecard.TextObservation{Text: text, X: x - 0.01, Y: y - 0.01, Width: 0.02, Height: 0.02, Confidence: 0.9}
}

// Card lays out an 18-hole header with player's name and scores on the row
// below. values may be shorter than 18; the remaining holes are left blank.
func Card(player string, values ...int) []scorecard.TextObservation {
	obs := make([]scorecard.TextObservation, 0, scorecard.MaxHoles+len(values)+1)
	for h := 1; h <= scorecard.MaxHoles; h++ {
		obs = append(obs, At(strconv.Itoa(h), HoleX(h), HeaderY))
	}
	obs = append(obs, scorecard.TextObservation{
		Text: player, X: 0.01, Y: PlayerY - 0.01, Width: 0.06, Height: 0.02, Confidence: 0.8,
	})
	for i, v := range values {
		obs = append(obs, At(strconv.Itoa(v), HoleX(i+1), PlayerY))
	}
	return obs
}

// Par4 returns n scores of 4.
func Par4(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 4
	}
	return out
}

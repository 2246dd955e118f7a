package scorecard

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MaxHoles is the number of holes on a full scorecard.
const MaxHoles = 18

// Score bounds accepted anywhere in the engine.
const (
	MinScore = 1
	MaxScore = 20
)

// TextObservation is one recognized text fragment with its bounding box.
//
// Coordinates are fractions of the image in [0,1] with the origin at the
// bottom-left corner and y increasing upward.
type TextObservation struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Confidence is the detector's own recognition confidence (0-1), when known.
	// Strategies do not use it.
	Confidence float64 `json:"confidence,omitempty"`
}

// MidX returns the horizontal centre of the box.
func (o TextObservation) MidX() float64 { return o.X + o.Width/2 }

// MidY returns the vertical centre of the box.
func (o TextObservation) MidY() float64 { return o.Y + o.Height/2 }

// HoleColumn is the x-position of one numbered hole taken from the header row.
type HoleColumn struct {
	Hole int     `json:"hole"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ScoreCandidate is a numeric token that may be a score.
type ScoreCandidate struct {
	Value int     `json:"value"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Score is a per-hole score. The zero value is Unknown.
type Score uint8

// Unknown marks a hole with no recovered score.
const Unknown Score = 0

// Known reports whether s holds a real score.
func (s Score) Known() bool { return s >= MinScore && s <= MaxScore }

func (s Score) String() string {
	if !s.Known() {
		return "?"
	}
	return strconv.Itoa(int(s))
}

// MarshalJSON encodes Unknown as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Known() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts null or an integer in [1,20].
func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Unknown
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v < MinScore || v > MaxScore {
		return fmt.Errorf("score %d out of range [%d,%d]", v, MinScore, MaxScore)
	}
	*s = Score(v)
	return nil
}

// Strategy identifies which aligner produced a result.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyGrid
	StrategyColumn
	StrategyCluster
	StrategyRowFallback
)

var strategyNames = map[Strategy]string{
	StrategyNone:        "none",
	StrategyGrid:        "grid",
	StrategyColumn:      "column",
	StrategyCluster:     "cluster",
	StrategyRowFallback: "row_fallback",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return "strategy(" + strconv.Itoa(int(s)) + ")"
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strategy) UnmarshalText(b []byte) error {
	for k, v := range strategyNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown strategy %q", b)
}

// Confidence grades how a hole's score was matched.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = map[Confidence]string{
	ConfidenceNone:   "none",
	ConfidenceLow:    "low",
	ConfidenceMedium: "medium",
	ConfidenceHigh:   "high",
}

func (c Confidence) String() string {
	if n, ok := confidenceNames[c]; ok {
		return n
	}
	return "confidence(" + strconv.Itoa(int(c)) + ")"
}

func (c Confidence) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Confidence) UnmarshalText(b []byte) error {
	for k, v := range confidenceNames {
		if v == string(b) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown confidence %q", b)
}

// ExtractionAttempt is the output of one strategy.
type ExtractionAttempt struct {
	PlayerName string
	Scores     []Score
	Confidence []Confidence
	Source     TextObservation
}

// Known counts the non-Unknown scores.
func (a *ExtractionAttempt) Known() int {
	return countKnown(a.Scores)
}

func countKnown(scores []Score) int {
	n := 0
	for _, s := range scores {
		if s.Known() {
			n++
		}
	}
	return n
}

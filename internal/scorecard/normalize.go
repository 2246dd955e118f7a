package scorecard

import (
	"regexp"
	"strconv"
	"strings"
)

// confusions maps letters the detector commonly reads in place of digits.
var confusions = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1", "i", "1",
	"S", "5",
	"B", "8",
	"g", "9",
	"Z", "2",
)

var (
	reParens = regexp.MustCompile(`\([^)]*\)`)
	// Header and summary words printed on cards. Matched before substitution,
	// otherwise "In" would become "1n" and parse as a score. Only letters
	// bound a word, so "In4" and "Hole1" lose the word but keep the digits.
	reStopWords = regexp.MustCompile(`(?i)(^|[^a-z])(?:total|tot|score|scores|hole|holes|out|in|par|hcp|handicap|net|gross|front|back|yards|yds|player|name)([^a-z]|$)`)
)

// stripStopWords blanks every stop word. Adjacent words share a boundary
// character, so replacement repeats until nothing matches.
func stripStopWords(s string) string {
	for {
		next := reStopWords.ReplaceAllString(s, "$1 $2")
		if next == s {
			return s
		}
		s = next
	}
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', ',', '|', '/', '\\', '-', '_', '\t':
		return true
	}
	return false
}

// NormalizeToken applies the character-confusion table, strips parenthesized
// text and stop words, and blanks everything that is not a digit, a
// separator or a decimal point.
func NormalizeToken(text string) string {
	s := stripStopWords(text)
	s = confusions.Replace(s)
	s = reParens.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || isSeparator(r) || r == '.' {
			return r
		}
		return ' '
	}, s)
}

// ParseScores returns every score in [1,20] found in text, in reading order.
func ParseScores(text string, tr *Trace) []int {
	return parseInts(text, MinScore, MaxScore, "score", tr)
}

// parseHoles returns every hole number in [1,18] found in text.
func parseHoles(text string, tr *Trace) []int {
	return parseInts(text, 1, MaxHoles, "hole", tr)
}

func parseInts(text string, lo, hi int, kind string, tr *Trace) []int {
	norm := NormalizeToken(text)
	if cleaned := strings.TrimSpace(norm); cleaned != strings.TrimSpace(text) {
		tr.Addf("normalize %q -> %q", text, cleaned)
	}
	var out []int
	for _, tok := range strings.FieldsFunc(norm, isSeparator) {
		digits, _, _ := strings.Cut(tok, ".")
		if digits == "" {
			continue
		}
		v, err := strconv.Atoi(digits)
		if err != nil {
			tr.Addf("%s token %q dropped: not an integer", kind, tok)
			continue
		}
		if v < lo || v > hi {
			tr.Addf("%s token %q dropped: outside [%d,%d]", kind, tok, lo, hi)
			continue
		}
		out = append(out, v)
	}
	return out
}

// positioned is a parsed value with the spot it occupies on the card.
type positioned struct {
	value int
	x, y  float64
}

// spread places n tokens from one observation evenly across its box.
func spread(o TextObservation, values []int) []positioned {
	out := make([]positioned, len(values))
	n := float64(len(values))
	for i, v := range values {
		out[i] = positioned{
			value: v,
			x:     o.X + o.Width*(float64(i)+0.5)/n,
			y:     o.MidY(),
		}
	}
	return out
}

func scoreTokens(o TextObservation, tr *Trace) []positioned {
	return spread(o, ParseScores(o.Text, tr))
}

func holeTokens(o TextObservation, tr *Trace) []positioned {
	return spread(o, parseHoles(o.Text, tr))
}

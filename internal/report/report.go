// Package report wraps an extraction result in the envelope handed to
// tool callers, the CLI and the watch sidecar files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// SidecarSuffix is appended to an image path to name its report file.
const SidecarSuffix = ".scorecard.json"

// Report is one read of one card.
type Report struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	// Source is the image or observations file the read came from.
	Source   string `json:"source,omitempty"`
	Detector string `json:"detector,omitempty"`
	Player   string `json:"player"`

	Route            scorecard.Route `json:"route"`
	NeedsManualEntry bool            `json:"needs_manual_entry"`
	Total            int             `json:"total"`
	Error            string          `json:"error,omitempty"`

	Result *scorecard.ExtractionResult `json:"result"`
}

// New builds a report for res. res must not be nil.
func New(res *scorecard.ExtractionResult, player, source, detector string) *Report {
	r := &Report{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC(),
		Source:           source,
		Detector:         detector,
		Player:           player,
		Route:            res.Route(),
		NeedsManualEntry: res.NeedsManualEntry(),
		Total:            Total(res.Scores),
		Result:           res,
	}
	if err := res.Err(); err != nil {
		r.Error = err.Error()
	}
	return r
}

// Total sums the known scores.
func Total(scores []scorecard.Score) int {
	sum := 0
	for _, s := range scores {
		if s.Known() {
			sum += int(s)
		}
	}
	return sum
}

// SidecarPath names the report file written next to an image.
func SidecarPath(imagePath string) string {
	return imagePath + SidecarSuffix
}

// Marshal encodes r as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteFile writes r to path, replacing any previous report atomically.
func (r *Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadFile loads a report written by WriteFile.
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}

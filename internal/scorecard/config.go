package scorecard

import (
	"fmt"
	"time"
)

// Config holds every spatial threshold the strategies use. Values are image
// fractions unless noted. None of them has a documented derivation; they were
// tuned by eye on a handful of cards and should be recalibrated against a
// real scorecard corpus.
type Config struct {
	// Header row search window (y of token mid-line).
	HeaderMinY float64 `mapstructure:"header_min_y" json:"header_min_y"`
	HeaderMaxY float64 `mapstructure:"header_max_y" json:"header_max_y"`
	// Max distance from the mean header y for a header token to survive.
	HeaderRowTolerance float64 `mapstructure:"header_row_tolerance" json:"header_row_tolerance"`
	// Minimum header holes before the grid aligner proceeds.
	MinHeaderHoles int `mapstructure:"min_header_holes" json:"min_header_holes"`

	GridRowBand         float64 `mapstructure:"grid_row_band" json:"grid_row_band"`
	GridDirectTolerance float64 `mapstructure:"grid_direct_tolerance" json:"grid_direct_tolerance"`
	GridMinScores       int     `mapstructure:"grid_min_scores" json:"grid_min_scores"`

	ColumnHeaderMinY     float64 `mapstructure:"column_header_min_y" json:"column_header_min_y"`
	ColumnRowBand        float64 `mapstructure:"column_row_band" json:"column_row_band"`
	ColumnAlignTolerance float64 `mapstructure:"column_align_tolerance" json:"column_align_tolerance"`

	ClusterTolerance float64 `mapstructure:"cluster_tolerance" json:"cluster_tolerance"`
	ClusterMinScores int     `mapstructure:"cluster_min_scores" json:"cluster_min_scores"`

	RowFallbackTolerance float64 `mapstructure:"row_fallback_tolerance" json:"row_fallback_tolerance"`
	// DedupeRowFallback drops repeated values in the row fallback output.
	// Off by default: golfers repeat scores across holes.
	DedupeRowFallback bool `mapstructure:"dedupe_row_fallback" json:"dedupe_row_fallback"`

	// DetectionTimeout bounds the call to the detector in Reader.
	DetectionTimeout time.Duration `mapstructure:"detection_timeout" json:"detection_timeout"`
}

// ColumnMinScores is the column aligner's acceptance bar: one above the grid's.
func (c Config) ColumnMinScores() int { return c.GridMinScores + 1 }

// DefaultConfig returns the thresholds used by the shipping build.
func DefaultConfig() Config {
	return Config{
		HeaderMinY:         0.50,
		HeaderMaxY:         0.60,
		HeaderRowTolerance: 0.02,
		MinHeaderHoles:     3,

		GridRowBand:         0.04,
		GridDirectTolerance: 0.015,
		GridMinScores:       8,

		ColumnHeaderMinY:     0.50,
		ColumnRowBand:        0.05,
		ColumnAlignTolerance: 0.03,

		ClusterTolerance: 0.01,
		ClusterMinScores: 9,

		RowFallbackTolerance: 0.005,

		DetectionTimeout: 30 * time.Second,
	}
}

// LenientConfig widens the header window and alignment tolerances for cards
// photographed at an angle. Acceptance thresholds are unchanged.
func LenientConfig() Config {
	c := DefaultConfig()
	c.HeaderMinY = 0.45
	c.HeaderMaxY = 0.70
	c.HeaderRowTolerance = 0.03
	c.GridRowBand = 0.05
	c.GridDirectTolerance = 0.02
	c.ColumnAlignTolerance = 0.04
	c.ClusterTolerance = 0.015
	c.RowFallbackTolerance = 0.01
	return c
}

// Preset returns a named threshold preset.
func Preset(name string) (Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "lenient":
		return LenientConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown engine preset %q", name)
	}
}

// Validate rejects thresholds that cannot describe a fractional layout.
func (c Config) Validate() error {
	fracs := []struct {
		name string
		v    float64
	}{
		{"header_min_y", c.HeaderMinY},
		{"header_max_y", c.HeaderMaxY},
		{"header_row_tolerance", c.HeaderRowTolerance},
		{"grid_row_band", c.GridRowBand},
		{"grid_direct_tolerance", c.GridDirectTolerance},
		{"column_header_min_y", c.ColumnHeaderMinY},
		{"column_row_band", c.ColumnRowBand},
		{"column_align_tolerance", c.ColumnAlignTolerance},
		{"cluster_tolerance", c.ClusterTolerance},
		{"row_fallback_tolerance", c.RowFallbackTolerance},
	}
	for _, f := range fracs {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %g", f.name, f.v)
		}
	}
	if c.HeaderMinY >= c.HeaderMaxY {
		return fmt.Errorf("header_min_y (%g) must be below header_max_y (%g)", c.HeaderMinY, c.HeaderMaxY)
	}
	if c.MinHeaderHoles < 1 || c.MinHeaderHoles > MaxHoles {
		return fmt.Errorf("min_header_holes must be between 1 and %d, got %d", MaxHoles, c.MinHeaderHoles)
	}
	if c.GridMinScores < 1 || c.GridMinScores > MaxHoles {
		return fmt.Errorf("grid_min_scores must be between 1 and %d, got %d", MaxHoles, c.GridMinScores)
	}
	if c.ClusterMinScores < 1 || c.ClusterMinScores > MaxHoles {
		return fmt.Errorf("cluster_min_scores must be between 1 and %d, got %d", MaxHoles, c.ClusterMinScores)
	}
	if c.DetectionTimeout <= 0 {
		return fmt.Errorf("detection_timeout must be positive, got %v", c.DetectionTimeout)
	}
	return nil
}

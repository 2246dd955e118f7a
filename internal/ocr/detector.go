package ocr

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ironsheep/scorecard-mcp/internal/imaging"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// Backend names accepted by New.
const (
	BackendTesseract = "tesseract"
	BackendEasyOCR   = "easyocr"
)

// Options configures a detector.
type Options struct {
	Backend    string
	Language   string
	EasyOCRURL string
	Timeout    time.Duration
	Preprocess imaging.PreprocessOptions
	Logger     *slog.Logger
}

// New returns the detector named by opts.Backend.
func New(opts Options) (scorecard.Detector, error) {
	switch opts.Backend {
	case "", BackendTesseract:
		return NewTesseractDetector(opts.Language, opts.Preprocess, opts.Logger), nil
	case BackendEasyOCR:
		if opts.EasyOCRURL == "" {
			return nil, fmt.Errorf("easyocr backend requires a server URL")
		}
		return NewEasyOCRDetector(opts.EasyOCRURL, opts.Timeout, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", opts.Backend)
	}
}

// FromPixels converts a pixel box (origin top-left, y down) on a width x
// height image to a fractional observation (origin bottom-left, y up).
// The box is clipped to the image.
func FromPixels(text string, confidence float64, r image.Rectangle, width, height int) scorecard.TextObservation {
	r = r.Canon().Intersect(image.Rect(0, 0, width, height))
	w, h := float64(width), float64(height)
	return scorecard.TextObservation{
		Text:       text,
		X:          float64(r.Min.X) / w,
		Y:          1 - float64(r.Max.Y)/h,
		Width:      float64(r.Dx()) / w,
		Height:     float64(r.Dy()) / h,
		Confidence: confidence,
	}
}

// dimensions reads the image header only.
func dimensions(raw []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return 0, 0, fmt.Errorf("image has no pixels")
	}
	return cfg.Width, cfg.Height, nil
}

// sortByConfidence orders observations most confident first; ties keep
// detector order.
func sortByConfidence(obs []scorecard.TextObservation) {
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Confidence > obs[j].Confidence })
}

func dropBlank(obs []scorecard.TextObservation) []scorecard.TextObservation {
	out := obs[:0]
	for _, o := range obs {
		if strings.TrimSpace(o.Text) == "" || o.Width <= 0 || o.Height <= 0 {
			continue
		}
		out = append(out, o)
	}
	return out
}

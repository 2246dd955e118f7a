package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/scorecard-mcp/internal/imaging"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// TesseractDetector recognizes words on-device through gosseract.
//
// Tesseract itself is not interruptible; the context is checked before the
// image is handed over and again once recognition returns. Reader bounds the
// wait independently.
type TesseractDetector struct {
	language   string
	preprocess imaging.PreprocessOptions
	logger     *slog.Logger
}

// NewTesseractDetector returns a detector for the given Tesseract language
// code ("eng" when empty). A nil logger uses slog.Default.
func NewTesseractDetector(language string, preprocess imaging.PreprocessOptions, logger *slog.Logger) *TesseractDetector {
	if language == "" {
		language = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractDetector{language: language, preprocess: preprocess, logger: logger}
}

// Detect implements scorecard.Detector. Word boxes are reported at RIL_WORD
// level with Tesseract's 0-100 confidence scaled to 0-1.
func (d *TesseractDetector) Detect(ctx context.Context, raw []byte) ([]scorecard.TextObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prepared, err := imaging.PreprocessBytes(raw, d.preprocess)
	if err != nil {
		return nil, err
	}
	width, height, err := dimensions(prepared)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(d.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obs := make([]scorecard.TextObservation, 0, len(boxes))
	for _, box := range boxes {
		obs = append(obs, FromPixels(box.Word, box.Confidence/100.0, box.Box, width, height))
	}
	obs = dropBlank(obs)
	d.logger.Debug("tesseract detection", "language", d.language, "words", len(obs), "width", width, "height", height)
	return obs, nil
}

// Version reports the linked Tesseract library version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// PreprocessOptions controls the cleanup applied to a photo before text
// detection. Zero values disable the corresponding step.
type PreprocessOptions struct {
	// Grayscale drops colour; printed cards are mostly ink on paper.
	Grayscale bool `mapstructure:"grayscale" json:"grayscale"`

	// DenoiseRadius is the median filter radius in pixels.
	DenoiseRadius float64 `mapstructure:"denoise_radius" json:"denoise_radius"`

	// Contrast is a percentage in [-100,100] passed to imaging.AdjustContrast.
	Contrast float64 `mapstructure:"contrast" json:"contrast"`

	// Sharpen is the Gaussian sigma for unsharp masking.
	Sharpen float64 `mapstructure:"sharpen" json:"sharpen"`

	// MinWidth upscales narrower photos so small handwriting survives
	// recognition.
	MinWidth int `mapstructure:"min_width" json:"min_width"`
}

// DefaultPreprocess returns the settings used for phone photos of cards.
func DefaultPreprocess() PreprocessOptions {
	return PreprocessOptions{
		Grayscale:     true,
		DenoiseRadius: 1,
		Contrast:      20,
		Sharpen:       1.0,
		MinWidth:      1600,
	}
}

// Enabled reports whether any step would change the image.
func (o PreprocessOptions) Enabled() bool {
	return o.Grayscale || o.DenoiseRadius > 0 || o.Contrast != 0 || o.Sharpen > 0 || o.MinWidth > 0
}

// Preprocess applies, in order: upscale, grayscale, median denoise, contrast
// and sharpen. The aspect ratio is preserved, so fractional coordinates
// measured on the result are valid on the original.
func Preprocess(img image.Image, opts PreprocessOptions) image.Image {
	out := img
	if w := out.Bounds().Dx(); opts.MinWidth > 0 && w > 0 && w < opts.MinWidth {
		out = imaging.Resize(out, opts.MinWidth, 0, imaging.Lanczos)
	}
	if opts.Grayscale {
		out = imaging.Grayscale(out)
	}
	if opts.DenoiseRadius > 0 {
		out = effect.Median(out, opts.DenoiseRadius)
	}
	if opts.Contrast != 0 {
		out = imaging.AdjustContrast(out, opts.Contrast)
	}
	if opts.Sharpen > 0 {
		out = imaging.Sharpen(out, opts.Sharpen)
	}
	return out
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// PreprocessBytes decodes raw, preprocesses it and re-encodes it as PNG.
// With every step disabled raw is returned unchanged.
func PreprocessBytes(raw []byte, opts PreprocessOptions) ([]byte, error) {
	if !opts.Enabled() {
		return raw, nil
	}
	img, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return EncodePNG(Preprocess(img.Image, opts))
}

// Package imaging loads scorecard photos and prepares them for text detection
// and for human review.
//
// # Loading
//
// ImageCache reads and decodes photos once per path, and again when the file
// is rewritten. PNG, JPEG, GIF, BMP, TIFF and WebP are registered. The cached
// Image keeps both the decoded pixels and the original bytes, since detectors
// take bytes.
//
// # Preprocessing
//
// Preprocess cleans a photo before recognition: upscale small images,
// grayscale, median denoise, contrast boost and unsharp masking. Every step is
// optional (see PreprocessOptions). The aspect ratio never changes, so
// fractional boxes detected on the processed image map straight back onto
// the original.
//
// # Overlay
//
// RenderOverlay draws observation boxes coloured by role (player name, player
// row, header, other numbers, other text) and a dashed guide at each detected
// hole column. It is the quickest way to see why a strategy was or was not
// accepted.
//
// # Coordinate System
//
// Observations use fractions in [0,1] with the origin at the bottom-left and
// y increasing upward. Pixel coordinates here use Go's convention: origin at
// the top-left, y increasing downward. PixelRect converts between them.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless.
package imaging

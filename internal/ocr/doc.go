// Package ocr provides the text detectors that feed the scorecard engine.
//
// Both detectors implement scorecard.Detector: encoded image bytes in,
// fractional bottom-left-origin observations out.
//
// # Backends
//
//   - TesseractDetector: on-device recognition through gosseract/v2. Word
//     level boxes, confidence scaled to 0-1. The photo can be cleaned up first
//     with imaging.Preprocess.
//   - EasyOCRDetector: a remote EasyOCR server over HTTP (POST /ocr with a
//     base64 image, GET /health). Results are sorted by confidence.
//
// New picks a backend from Options.
//
// # Prerequisites
//
// Tesseract must be installed on the system for the tesseract backend:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The EasyOCR server listens on port 5001 by default.
//
// # Coordinates
//
// Detectors report pixel boxes with the origin at the top-left. FromPixels
// clips them to the image and converts them to fractions with the origin at
// the bottom-left and y increasing upward, which is what the engine's row
// and header geometry assumes.
//
// # Cancellation
//
// The HTTP backend honours the context on every request. Tesseract cannot be
// interrupted once running; the context is checked before and after.
package ocr

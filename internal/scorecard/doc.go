// Package scorecard reconstructs one player's per-hole scores from the text
// fragments a detector found on a photographed golf scorecard.
//
// The input is a list of TextObservation values: recognized text plus a
// bounding box in image fractions, origin at the bottom-left. Nothing here
// touches pixels; detection is behind the Detector interface.
//
// # Strategies
//
// Extraction tries four aligners in a fixed order and keeps the first one
// whose acceptance bar is met:
//
//   - grid: match the player's row against the hole-number header row
//     (direct, inferred, then last-resort passes). Accepts with at least
//     min(GridMinScores, header holes) scores.
//   - column: a looser header match taking hole numbers from anywhere in the
//     upper half. Accepts with at least GridMinScores+1 scores.
//   - cluster: no header; group observations into rows by y and read the
//     player's row left to right. Accepts with at least ClusterMinScores.
//   - row fallback: concatenate text on exactly the player's row. Accepts any
//     non-empty result.
//
// If the player name is not found no strategy runs.
//
// # Normalization
//
// Tokens go through a character-confusion table (O to 0, l to 1, S to 5 and
// so on) after stop words such as "Out", "In" and "Total" are removed.
// Parenthesized text is dropped and values outside [1,20] never become
// candidates.
//
// # Results
//
// ExtractionResult carries the scores, per-hole confidence grades, the
// strategy used and a per-call trace of every decision. Its State follows
//
//	Idle -> Detecting -> DetectionFailed | Extracting
//	Extracting -> ExtractionSucceeded | ExtractionPartial | ExtractionFailed
//	DetectionFailed | ExtractionPartial | ExtractionFailed -> ManualEntryRequested
//
// Route and NeedsManualEntry tell the caller whether to prompt for manual
// entry. Err maps failures onto the sentinel errors for errors.Is.
//
// # Thresholds
//
// Every spatial threshold lives in Config. DefaultConfig and LenientConfig are
// the two presets; neither was derived from a measured corpus.
//
// Extract and Selector are pure and safe for concurrent use. Reader adds the
// detector call with a timeout.
package scorecard

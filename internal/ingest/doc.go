// Package ingest gets scorecard inputs into the engine.
//
// Decode reads pre-computed detector output from JSON, either a bare array of
// observations or {"player": ..., "observations": [...]}, and checks it
// against a JSON schema before anything reaches the strategies. Coordinates
// must already be fractions with a bottom-left origin.
//
// Watcher follows a directory with fsnotify and hands each new image to a
// Handler once writes have stopped for the debounce interval. Handlers run
// on a bounded pool; the CLI's watch command uses one that reads the card and
// writes a report next to the image.
package ingest

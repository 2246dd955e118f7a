// Package server implements the MCP (Model Context Protocol) server for
// golf scorecard reading.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - scorecard_read: photo + player name to an 18-hole report
//   - scorecard_extract: pre-detected observations + player to a report
//   - scorecard_detect: photo to raw text observations
//   - scorecard_overlay: photo with detected boxes drawn by role, as PNG
//   - scorecard_export_xlsx: report written to an Excel workbook
//
// Reports carry an ID, the route (succeeded, partial or failed), whether
// manual entry is needed, the total of known scores and the full
// extraction result including its decision trace. A read that fails to find
// the player or any score is still a successful tool call; the failure is
// described in the report.
//
// # Image Caching
//
// Photos are cached by path, so a read followed by an overlay and an export
// of the same card decodes it once. The cache is bounded and drops the
// oldest entry first.
//
// # Error Handling
//
//   - -32700: a line on stdin is not JSON
//   - -32601: unknown method
//   - -32602: bad tool arguments (missing player, invalid observations,
//     unknown preset or tool)
//   - -32000: the tool could not run (unreadable photo, no detector,
//     detection failure in scorecard_detect or scorecard_overlay)
//
// # Usage
//
//	srv := server.New(server.Options{Detector: det, Engine: cfg.Engine, Logger: logger})
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package server

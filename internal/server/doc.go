// Package server implements the MCP (Model Context Protocol) server for image
// change detection.
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
//   - image_compare: Full comparison report: similarity, change level, ranked
//     changed regions, diff image, summary, and optionally the text inside
//     each region
//   - image_similarity: Similarity percentage and change level only
//   - image_load: Load an image and get its metadata
//
// Images are passed by path or inline as base64. Unknown argument names are
// rejected. Per-call arguments override the defaults from the configuration
// file the server was started with.
//
// # Image Caching
//
// Images given by path are cached and reused across calls for the lifetime
// of the server process. Inline images are never cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. When the failure comes from the detector, data reads
// "<Tag>: <reason>" with Tag one of InvalidImageError, DimensionMismatchError,
// ComputationError or InvalidOptionsError.
//
// # Usage
//
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

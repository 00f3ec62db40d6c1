// Package server implements the MCP (Model Context Protocol) server that
// exposes the sightline core as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never corrupt the transport.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame Analysis:
//   - frame_activity: Per-zone pixel activity and resolved position
//   - frame_far_check: Too-far decision for one or all zones
//   - frame_annotate: Zone and box overlay as base64 PNG
//
// Detection:
//   - detections_fuse: Fuse recorded channel output into announced detections
//   - distance_estimate: Distance band from bounding box area
//
// Scene Understanding:
//   - location_infer: Place inference from object labels
//   - text_read: OCR in reading order with plausibility filtering
//
// # Frame Caching
//
// Images are decoded once per path and kept for the lifetime of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data.
package server

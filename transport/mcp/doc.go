// Package mcp exposes the bank branch game to AI agents over the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API, so an agent plays exactly the same sessions a browser would. Tools:
//   - create_session, list_maps
//   - game_state: exercise, phase and a text rendering of the map
//   - tap_station, tap_cell: start a walk, optionally waiting until it ends
//   - advance_dialogue, dismiss_dialogue
//   - plan_path: dry-run search from the token
//   - reset_run, attempt_history
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp

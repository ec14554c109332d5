// Package mcp exposes the autopilot simulator to AI agents over the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call is translated into a request against
// the REST API, so the MCP surface and the HTTP surface always agree.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: grid, car position, heading, health and keys
//   - drive: one relative command (forward, backward, left, right, none)
//   - bulk_drive: a sequence of commands with per-step diagnostics
//   - reset_game, move_history: restart and review a session
//   - step, autodrive: let the autopilot drive one tick or a whole run
//   - plan: preview the autopilot's route without driving
//   - list_configs, game_instructions, describe_cell: scenario and rules help
//
// Transport Modes:
//
// The same MCP server is served over stdio for local agents (ServeStdio) and
// over HTTP on the /mcp endpoint of the main server (GetMCPServer).
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp

// Package api provides the HTTP REST API of the bank branch game server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "branch"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions for a multi-session view (?sessionIds=a,b or ?configName=branch)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current run snapshot
//   - POST /api/sessions/{id}/tap - Walk to a free cell ({"x": 0, "y": 0})
//   - POST /api/sessions/{id}/tap-station - Walk to a station and be judged ({"station": "atm"})
//   - POST /api/sessions/{id}/dialogue/next - Page the dialogue after a correct arrival
//   - POST /api/sessions/{id}/dialogue/dismiss - Close the dialogue and move to the next exercise
//   - POST /api/sessions/{id}/reset - Restart the run where the token stands
//   - POST /api/sessions/{id}/plan - Preview a walk without moving ({"station": "..."} or {"x": .., "y": ..})
//   - GET /api/sessions/{id}/history - Attempt history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List maps
//   - GET /api/configs/{name} - Get a map
//   - POST /api/configs - Validate and save a map
//
// Other:
//   - GET /ws?session={id} - WebSocket stream of positions, events and snapshots
//   - GET /health - Liveness probe
//
// Taps always answer 200. A tap that was ignored carries accepted=false, a
// reason code (busy, blocked, out_of_bounds, no_path, already_there,
// unknown_station, not_a_target, exercise_completed, station_cell) and a
// readable message.
// Walks are played out by the server's movement clock; follow them over the
// WebSocket or poll the state endpoint.
//
// Errors are returned as JSON:
//
//	{"error": "session not found: abcd"}
//
// with 400 for malformed input or invalid maps, 404 for unknown sessions or
// maps, 409 for dialogue calls outside a dialogue or after the run finished,
// and 500 otherwise.
package api

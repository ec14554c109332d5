// Package api provides the HTTP REST API of the autopilot simulator.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                  create a session ({"config_id": "classic"})
//   - GET    /api/sessions                  list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}             session details
//   - DELETE /api/sessions/{id}             delete a session
//
// Manual driving:
//   - GET  /api/sessions/{id}/state         current simulator state
//   - POST /api/sessions/{id}/drive         one command ({"command": "forward", "reset": false})
//   - POST /api/sessions/{id}/bulk-drive    up to 50 commands ({"commands": ["forward", "right"]})
//   - POST /api/sessions/{id}/reset         restart the scenario
//   - GET  /api/sessions/{id}/history       paginated move history (?page=1&limit=20&order=desc)
//
// Autopilot:
//   - POST /api/sessions/{id}/step          one autopilot tick
//   - POST /api/sessions/{id}/autodrive     tick until the game ends ({"max_ticks": 100})
//   - GET  /api/sessions/{id}/plan          route preview (?strategy=goal|explore)
//
// Scenarios:
//   - GET  /api/configs                     list scenarios
//   - GET  /api/configs/{name}              scenario JSON
//   - POST /api/configs                     save a scenario
//
// Live updates are streamed on /ws?session={id}. /healthz reports liveness.
//
// Commands are relative to the car's heading: forward, backward, left, right
// and none. Left and right turn the car and move it one tile.
//
// Errors are JSON bodies {"error": "..."}: 400 for bad requests and unknown
// strategies, 404 for unknown sessions, 409 when the autopilot is asked to
// drive a finished game.
//
// Bulk drive responses carry decision aids: the executed steps, the tile a
// blocked command tried to enter (attempted_to), a stop_reason_code
// (blocked, unknown_command, victory, destroyed, stuck, game_over), the
// commands that would succeed now and a 3x3 view around the car, north row
// first, with the car drawn as C.
package api

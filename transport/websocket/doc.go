// Package websocket streams simulator updates to browser viewers.
//
// A Hub keeps the connected clients per session. Handlers publish through
// BroadcastToSession after manual commands and BroadcastStep after autopilot
// ticks; every message is one JSON text frame:
//
//	{"session_id": "ab12", "event": "autopilot_step", "game_state": {...}, "data": {...}}
//
// Clients connect with ?session=<id> and only receive their session's
// updates. Viewers never send commands; incoming frames only keep the
// connection alive.
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket

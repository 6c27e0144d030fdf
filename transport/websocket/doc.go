// Package websocket streams live game updates to browser clients.
//
// Clients connect with ?sessionId=ab12 and only receive messages for that
// session. The stream is one-way: taps go through the REST API, and the
// movement clock in the service layer pushes every step, arrival, rejection,
// dialogue and completion through the Hub as it happens.
//
// Message Protocol:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "step", "data": {"type": "step", "cell": {"x": 2, "y": 3}}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetSnapshotSource(lookup)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("sessionId"))
//	})
//
// Concurrency:
//
// Only the Run loop touches the subscriber registry. Broadcasts are queued on
// a buffered channel and never block the caller. Every frame is one JSON
// message. A new subscriber first receives the session's current state when a
// snapshot source is set. A subscriber that falls behind skips state updates
// and is disconnected when it cannot take an event.
package websocket

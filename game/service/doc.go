// Package service is the business layer of the bank branch server.
//
// GameService sits between the transports (HTTP, WebSocket, MCP) and the
// engine. It resolves sessions, turns engine tap results into ActionResults
// with player-facing messages, pages through attempt history and runs the
// movement clock.
//
// The engine never sleeps: walks and rejection windows only progress when
// Tick is called. Run calls Tick on a ticker for every session that is
// walking or showing a rejection, passing the real elapsed time, and pushes
// position updates, engine events and fresh snapshots through the Notifier.
//
// Usage:
//
//	sessions := session.NewManager()
//	configs, _ := config.NewManager("configs")
//	hub := websocket.NewHub()
//	svc := service.NewGameService(sessions, configs, hub)
//	go svc.Run(ctx, service.DefaultTickInterval)
//
//	info, err := svc.CreateSession(ctx, "branch")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := svc.TapStation(ctx, info.ID, "atm")
package service

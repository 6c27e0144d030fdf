// Package engine provides the core logic for the bank branch mini-game.
//
// A player token walks a small rectangular grid representing a bank branch.
// Each exercise names a target station (ATM, help desk or payment station);
// the player taps a station, the token walks to the open cell next to it and
// the arrival is judged against the target.
//
// Core Types:
//
// Grid answers static queries about cells, obstacles and stations.
// PathFinder runs A* over a Grid. Sequencer plays a path back against an
// external clock and writes the final cell into a PlayerPosition. Resolver
// judges arrivals. Controller ties them together for one exercise, and Game
// runs a map's exercises in order while keeping one PlayerPosition.
//
// Usage:
//
//	config, err := engine.LoadMapConfig("configs/branch.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGame(config, engine.GameOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game.TapStation("atm")
//	for game.Snapshot().Controller.State == engine.StateMoving {
//		game.Tick(50 * time.Millisecond)
//	}
//
// Timing:
//
// Nothing in this package sleeps or starts goroutines. Movement and the
// rejection window only progress through Tick, so callers choose the clock.
package engine

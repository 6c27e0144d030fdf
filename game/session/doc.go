// Package session keeps the live game sessions of the bank branch server.
//
// Each session owns one engine.Game. The game holds the token position for
// the whole run, so a session is the lifetime boundary of that position:
// exercises inside a session share it, separate sessions never do.
//
// Sessions use 4-character hex IDs, looked up case-insensitively. They live
// in memory only and disappear when the process exits or when
// CleanupExpiredSessions finds them idle for longer than the given age.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess.Game.TapStation("atm")
package session

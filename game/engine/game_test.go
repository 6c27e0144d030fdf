package engine

import (
	"errors"
	"testing"
	"time"
)

// playExercise taps the current target, walks there and dismisses the dialogue
func playExercise(t *testing.T, g *Game) []Event {
	t.Helper()
	ex, _ := g.Exercise()
	if r := g.TapStation(ex.TargetStation); !r.Accepted {
		t.Fatalf("Tap on %s ignored: %s", ex.TargetStation, r.Reason)
	}
	g.Tick(time.Minute)
	events, err := g.DismissDialogue()
	if err != nil {
		t.Fatalf("DismissDialogue failed on %s: %v", ex.ID, err)
	}
	return events
}

func TestNewGameStartsAtSpawn(t *testing.T) {
	g := NewGameWithDefaults(9)

	snap := g.Snapshot()
	if snap.Controller.Settled != (Cell{X: 3, Y: 7}) {
		t.Errorf("Expected spawn (3,7), got %v", snap.Controller.Settled)
	}
	if snap.ExerciseIndex != 0 || snap.ExerciseCount != 8 {
		t.Errorf("Expected exercise 1 of 8, got %d of %d", snap.ExerciseIndex+1, snap.ExerciseCount)
	}
	if snap.Message != snap.Exercise.Statement {
		t.Errorf("Expected the exercise statement as message, got %q", snap.Message)
	}
	if snap.Rows != 9 || len(snap.Layout) != 9 {
		t.Errorf("Expected 9 rows, got %d", snap.Rows)
	}
}

func TestGamePositionPersistsAcrossExercises(t *testing.T) {
	g := NewGameWithDefaults(MinBranchRows)

	// bank-1 targets the ATM; from spawn (3,5) the cell below it is closest
	events := playExercise(t, g)
	if g.PlayerPosition().Get() != (Cell{X: 1, Y: 5}) {
		t.Fatalf("Expected to finish next to the ATM at (1,5), got %v", g.PlayerPosition().Get())
	}
	if !equalTypes(eventTypes(events), EventCompleted, EventExerciseStarted) {
		t.Errorf("Unexpected events %v", eventTypes(events))
	}

	ex, idx := g.Exercise()
	if idx != 1 || ex.TargetStation != "helpDesk" {
		t.Fatalf("Expected bank-2 targeting helpDesk, got %s (%d)", ex.ID, idx)
	}
	if g.Snapshot().Controller.Settled != (Cell{X: 1, Y: 5}) {
		t.Error("Expected the next exercise to start where the last one ended")
	}

	r := g.TapStation("helpDesk")
	if r.Path[0] != (Cell{X: 1, Y: 5}) || r.Path.Last() != (Cell{X: 3, Y: 3}) || len(r.Path) != 5 {
		t.Errorf("Expected a 4-step walk from (1,5) to (3,3), got %v", r.Path)
	}
}

func TestGameRunFinishes(t *testing.T) {
	var finished []Event
	config := DefaultMapConfig(MinBranchRows)
	g, err := NewGame(config, GameOptions{Listener: ListenerFunc(func(e Event) {
		if e.Type == EventRunFinished {
			finished = append(finished, e)
		}
	})})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}

	for range config.Exercises {
		playExercise(t, g)
	}

	if !g.Finished() {
		t.Fatal("Expected the run to be finished")
	}
	want := len(config.Exercises) * DefaultPointsPerExercise
	if g.Score() != want {
		t.Errorf("Expected score %d, got %d", want, g.Score())
	}
	if len(finished) != 1 || finished[0].Points != want {
		t.Errorf("Expected one run_finished with %d points, got %+v", want, finished)
	}
	if _, err := g.DismissDialogue(); !errors.Is(err, ErrRunFinished) {
		t.Errorf("Expected ErrRunFinished, got %v", err)
	}

	// the token stays put once the run is over
	settled := g.PlayerPosition().Get()
	for _, r := range []TapResult{g.TapCell(Cell{X: 0, Y: 0}), g.TapStation("helpDesk")} {
		if r.Accepted || r.Reason != ReasonCompleted {
			t.Errorf("Expected tap ignored with %q after the run, got %+v", ReasonCompleted, r)
		}
	}
	if g.PlayerPosition().Get() != settled || g.Busy() {
		t.Errorf("Expected the token idle at %v, got %v", settled, g.PlayerPosition().Get())
	}

	attempts := g.Attempts()
	if len(attempts) != len(config.Exercises) {
		t.Fatalf("Expected %d attempts, got %d", len(config.Exercises), len(attempts))
	}
	for i, a := range attempts {
		if !a.Correct || a.Points != DefaultPointsPerExercise || a.Number != i+1 || a.ID == "" {
			t.Errorf("Attempt %d: unexpected %+v", i, a)
		}
	}
}

func TestGameRecordsIncorrectAttempts(t *testing.T) {
	g := NewGameWithDefaults(MinBranchRows)

	// bank-1 targets the ATM
	g.TapStation("paymentStation")
	events := g.Tick(time.Minute)
	if last := events[len(events)-1]; last.Type != EventRejected || last.StationKey != "paymentStation" {
		t.Fatalf("Expected rejection at the payment station, got %+v", last)
	}

	attempts := g.Attempts()
	if len(attempts) != 1 || attempts[0].Correct || attempts[0].ExerciseID != "bank-1" {
		t.Errorf("Expected one incorrect bank-1 attempt, got %+v", attempts)
	}
	if g.Snapshot().Message != "Para retirar efectivo, el ATM es tu mejor opción." {
		t.Errorf("Expected incorrect feedback as message, got %q", g.Snapshot().Message)
	}
	if g.Score() != 0 {
		t.Errorf("Expected no points for a wrong station, got %d", g.Score())
	}
}

func TestGameReset(t *testing.T) {
	g := NewGameWithDefaults(MinBranchRows)
	playExercise(t, g)

	g.TapCell(Cell{X: 6, Y: 0})
	g.Tick(400 * time.Millisecond)
	events := g.Reset()

	if !equalTypes(eventTypes(events), EventInterrupted, EventExerciseStarted) {
		t.Errorf("Unexpected reset events %v", eventTypes(events))
	}
	if _, idx := g.Exercise(); idx != 0 {
		t.Errorf("Expected first exercise after reset, got %d", idx)
	}
	if g.Score() != 0 || g.Finished() || g.Busy() {
		t.Error("Expected a fresh, idle run after reset")
	}
	if g.PlayerPosition().Get() == g.Config().Spawn {
		t.Error("Expected the token to keep its position across reset")
	}
	if len(g.Attempts()) != 1 {
		t.Errorf("Expected attempt history to survive reset, got %d", len(g.Attempts()))
	}
}

func TestGamePlanning(t *testing.T) {
	g := NewGameWithDefaults(MinBranchRows)

	target, path, err := g.PlanStation("atm")
	if err != nil {
		t.Fatalf("PlanStation failed: %v", err)
	}
	if target != (Cell{X: 1, Y: 5}) || len(path) != 3 {
		t.Errorf("Expected a 2-step plan to (1,5), got %v via %v", target, path)
	}
	if g.Busy() || g.PlayerPosition().Get() != g.Config().Spawn {
		t.Error("Expected planning to leave the run untouched")
	}

	if _, _, err := g.PlanStation("vault"); !errors.Is(err, ErrUnknownStation) {
		t.Errorf("Expected ErrUnknownStation, got %v", err)
	}
	if p := g.PlanPath(Cell{X: 2, Y: 2}); len(p) != 0 {
		t.Errorf("Expected no path onto a counter, got %v", p)
	}
}

func TestNewGameSharedPosition(t *testing.T) {
	shared := NewPlayerPosition(Cell{X: 0, Y: 0})
	g, err := NewGame(DefaultMapConfig(MinBranchRows), GameOptions{Position: shared})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	if g.PlayerPosition() != shared {
		t.Error("Expected the shared position to be used")
	}

	_, err = NewGame(DefaultMapConfig(MinBranchRows), GameOptions{Position: NewPlayerPosition(Cell{X: 3, Y: 2})})
	if !errors.Is(err, ErrInvalidMap) {
		t.Errorf("Expected ErrInvalidMap for a blocked shared position, got %v", err)
	}
}

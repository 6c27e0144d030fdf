package engine

import (
	"errors"
	"testing"
	"time"
)

func exerciseFor(t *testing.T, target string) Exercise {
	t.Helper()
	for _, ex := range DefaultExercises() {
		if ex.TargetStation == target {
			return ex
		}
	}
	t.Fatalf("no default exercise targets %q", target)
	return Exercise{}
}

func newTestController(t *testing.T, target string, start Cell, timing Timing, listener Listener) (*Controller, *PlayerPosition) {
	t.Helper()
	grid := branchGrid(t)
	pos := NewPlayerPosition(start)
	c, err := NewController(grid, NewPathFinder(grid), pos, exerciseFor(t, target), ControllerOptions{
		Timing:   timing,
		Points:   DefaultPointsPerExercise,
		Listener: listener,
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c, pos
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func equalTypes(got []EventType, want ...EventType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestNewControllerValidatesTarget(t *testing.T) {
	grid := branchGrid(t)
	pos := NewPlayerPosition(Cell{X: 3, Y: 3})

	_, err := NewController(grid, NewPathFinder(grid), pos, Exercise{ID: "x", TargetStation: "vault"}, ControllerOptions{})
	if !errors.Is(err, ErrUnknownStation) {
		t.Errorf("Expected ErrUnknownStation, got %v", err)
	}

	_, err = NewController(grid, NewPathFinder(grid), pos, Exercise{ID: "x", TargetStation: "entrance"}, ControllerOptions{})
	if !errors.Is(err, ErrInvalidMap) {
		t.Errorf("Expected ErrInvalidMap for entrance target, got %v", err)
	}
}

func TestControllerAdjacentCorrectStation(t *testing.T) {
	c, pos := newTestController(t, "helpDesk", Cell{X: 3, Y: 3}, testTiming(), nil)

	result := c.TapStation("helpDesk")
	if !result.Accepted {
		t.Fatalf("Expected tap to be accepted, got reason %q", result.Reason)
	}
	if len(result.Path) != 1 {
		t.Errorf("Expected no movement when already adjacent, got path %v", result.Path)
	}
	if !equalTypes(eventTypes(result.Events), EventDialogue) {
		t.Fatalf("Expected a dialogue event, got %v", eventTypes(result.Events))
	}
	if result.Events[0].Dialogue == nil || result.Events[0].Dialogue.Speaker != "Ejecutivo Bantrab" {
		t.Errorf("Expected help desk dialogue, got %+v", result.Events[0].Dialogue)
	}
	if c.State() != StateDialogue {
		t.Errorf("Expected dialogue state, got %s", c.State())
	}

	events, err := c.DismissDialogue()
	if err != nil {
		t.Fatalf("DismissDialogue failed: %v", err)
	}
	if !equalTypes(eventTypes(events), EventCompleted) || events[0].Points != DefaultPointsPerExercise {
		t.Errorf("Expected completed with %d points, got %+v", DefaultPointsPerExercise, events)
	}
	if pos.Get() != (Cell{X: 3, Y: 3}) {
		t.Errorf("Expected position unchanged, got %v", pos.Get())
	}
	if !c.Completed() || c.Busy() {
		t.Error("Expected completed, idle controller")
	}
}

func TestControllerWrongStationScenario(t *testing.T) {
	c, pos := newTestController(t, "helpDesk", Cell{X: 3, Y: 3}, testTiming(), nil)

	result := c.TapStation("atm")
	if !result.Accepted {
		t.Fatalf("Expected tap to be accepted, got reason %q", result.Reason)
	}
	want := Path{{X: 3, Y: 3}, {X: 2, Y: 3}, {X: 1, Y: 3}}
	if len(result.Path) != len(want) {
		t.Fatalf("Expected path %v, got %v", want, result.Path)
	}
	for i := range want {
		if result.Path[i] != want[i] {
			t.Errorf("Path[%d]: expected %v, got %v", i, want[i], result.Path[i])
		}
	}
	if c.State() != StateMoving {
		t.Errorf("Expected moving state, got %s", c.State())
	}

	events := c.Tick(PathDuration(result.Path, testTiming()))
	if !equalTypes(eventTypes(events), EventStep, EventStep, EventArrived, EventRejected) {
		t.Fatalf("Unexpected events %v", eventTypes(events))
	}
	rejected := events[len(events)-1]
	if rejected.StationKey != "atm" {
		t.Errorf("Expected Incorrect(atm), got %q", rejected.StationKey)
	}
	if pos.Get() != (Cell{X: 1, Y: 3}) {
		t.Errorf("Expected to stop next to the ATM at (1,3), got %v", pos.Get())
	}

	snap := c.Snapshot()
	if snap.RejectedStation != "atm" || snap.RejectionRemainingMS != 2500 {
		t.Errorf("Expected pending atm rejection for 2500ms, got %+v", snap)
	}

	if events := c.Tick(2499 * time.Millisecond); len(events) != 0 {
		t.Errorf("Expected rejection to hold, got %v", eventTypes(events))
	}
	events = c.Tick(time.Millisecond)
	if !equalTypes(eventTypes(events), EventRejectionCleared) {
		t.Errorf("Expected rejection_cleared, got %v", eventTypes(events))
	}
	if c.Busy() {
		t.Error("Expected controller to accept input again")
	}
}

func TestControllerIgnoresInputWhileBusy(t *testing.T) {
	c, _ := newTestController(t, "helpDesk", Cell{X: 3, Y: 3}, testTiming(), nil)

	if r := c.TapCell(Cell{X: 0, Y: 3}); !r.Accepted {
		t.Fatalf("Expected first tap to be accepted, got %q", r.Reason)
	}
	if r := c.TapCell(Cell{X: 6, Y: 3}); r.Accepted || r.Reason != ReasonBusy {
		t.Errorf("Expected busy while moving, got %+v", r)
	}
	if r := c.TapStation("helpDesk"); r.Accepted || r.Reason != ReasonBusy {
		t.Errorf("Expected busy while moving, got %+v", r)
	}

	// Walk to the ATM from (0,3) to get rejected
	c.Tick(10 * time.Second)
	if r := c.TapStation("atm"); !r.Accepted {
		t.Fatalf("Expected atm tap to be accepted, got %q", r.Reason)
	}
	c.Tick(10 * time.Second)
	if c.State() != StateRejected {
		t.Fatalf("Expected rejected state, got %s", c.State())
	}
	if r := c.TapCell(Cell{X: 6, Y: 0}); r.Reason != ReasonBusy {
		t.Errorf("Expected busy while rejected, got %+v", r)
	}

	c.Tick(testTiming().RejectionWindow())
	if r := c.TapStation("helpDesk"); !r.Accepted {
		t.Fatalf("Expected help desk tap to be accepted, got %q", r.Reason)
	}
	c.Tick(10 * time.Second)
	if c.State() != StateDialogue {
		t.Fatalf("Expected dialogue state, got %s", c.State())
	}
	if r := c.TapCell(Cell{X: 6, Y: 0}); r.Reason != ReasonBusy {
		t.Errorf("Expected busy during dialogue, got %+v", r)
	}
}

func TestControllerIgnoredTaps(t *testing.T) {
	c, _ := newTestController(t, "atm", Cell{X: 3, Y: 3}, testTiming(), nil)

	tests := []struct {
		name   string
		tap    func() TapResult
		reason string
	}{
		{"counter cell", func() TapResult { return c.TapCell(Cell{X: 2, Y: 2}) }, ReasonBlocked},
		{"outside the grid", func() TapResult { return c.TapCell(Cell{X: -1, Y: 0}) }, ReasonOutOfBounds},
		{"current cell", func() TapResult { return c.TapCell(Cell{X: 3, Y: 3}) }, ReasonAlreadyThere},
		{"entrance cell", func() TapResult { return c.TapCell(Cell{X: 3, Y: 6}) }, ReasonStationCell},
		{"unknown station", func() TapResult { return c.TapStation("vault") }, ReasonUnknownStation},
		{"entrance", func() TapResult { return c.TapStation("entrance") }, ReasonNotATarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.tap()
			if r.Accepted || r.Reason != tt.reason {
				t.Errorf("Expected ignored with %q, got %+v", tt.reason, r)
			}
			if c.Busy() {
				t.Error("Expected controller to stay idle")
			}
		})
	}
}

func TestControllerNoPath(t *testing.T) {
	// (4,4) is sealed off by (3,4) and (4,3)
	grid, err := NewGrid(5, 5, []Cell{{X: 3, Y: 4}, {X: 4, Y: 3}}, []Station{{Key: "atm", Type: ATM, X: 0, Y: 0}})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	c, err := NewController(grid, NewPathFinder(grid), NewPlayerPosition(Cell{X: 2, Y: 2}),
		Exercise{ID: "x", TargetStation: "atm"}, ControllerOptions{Timing: testTiming()})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}

	if r := c.TapCell(Cell{X: 4, Y: 4}); r.Accepted || r.Reason != ReasonNoPath {
		t.Errorf("Expected no_path, got %+v", r)
	}
	if c.State() != StateIdle {
		t.Errorf("Expected idle after a failed plan, got %s", c.State())
	}
}

func TestControllerEntranceIsWalkable(t *testing.T) {
	// the entrance cannot be tapped as a free cell, but the token may stand on it
	c, pos := newTestController(t, "atm", Cell{X: 3, Y: 6}, testTiming(), nil)

	r := c.TapCell(Cell{X: 3, Y: 4})
	if !r.Accepted {
		t.Fatalf("Expected a walk off the entrance, got %q", r.Reason)
	}
	if r.Path[0] != (Cell{X: 3, Y: 6}) {
		t.Errorf("Expected the path to start on the entrance, got %v", r.Path)
	}
	events := c.Tick(10 * time.Second)
	last := events[len(events)-1]
	if last.Type != EventArrived || last.StationKey != "" {
		t.Errorf("Expected a plain arrival, got %+v", last)
	}
	if pos.Get() != (Cell{X: 3, Y: 4}) || c.State() != StateIdle {
		t.Errorf("Expected idle at (3,4), got %v in %s", pos.Get(), c.State())
	}
}

func TestControllerNegativeTick(t *testing.T) {
	c, pos := newTestController(t, "atm", Cell{X: 3, Y: 3}, testTiming(), nil)

	if r := c.TapCell(Cell{X: 4, Y: 3}); !r.Accepted {
		t.Fatalf("Expected tap accepted, got %q", r.Reason)
	}
	c.Tick(-time.Second)
	c.Tick(380 * time.Millisecond)
	if pos.Get() != (Cell{X: 4, Y: 3}) || c.State() != StateIdle {
		t.Errorf("Expected a backwards tick to be ignored, got %v in %s", pos.Get(), c.State())
	}
}

func TestControllerZeroRejectionWindow(t *testing.T) {
	timing := testTiming()
	timing.RejectionWindowMS = 0
	c, _ := newTestController(t, "helpDesk", Cell{X: 1, Y: 3}, timing, nil)

	r := c.TapStation("atm")
	if !equalTypes(eventTypes(r.Events), EventRejected, EventRejectionCleared) {
		t.Errorf("Expected immediate rejection and clear, got %v", eventTypes(r.Events))
	}
	if c.Busy() {
		t.Error("Expected no input block with a zero rejection window")
	}
}

func TestControllerDialoguePaging(t *testing.T) {
	c, _ := newTestController(t, "helpDesk", Cell{X: 3, Y: 3}, testTiming(), nil)

	if _, err := c.AdvanceDialogue(); !errors.Is(err, ErrNotInDialogue) {
		t.Errorf("Expected ErrNotInDialogue, got %v", err)
	}
	if _, err := c.DismissDialogue(); !errors.Is(err, ErrNotInDialogue) {
		t.Errorf("Expected ErrNotInDialogue, got %v", err)
	}

	c.TapStation("helpDesk")
	pages := len(exerciseFor(t, "helpDesk").Dialogue.Messages)
	for i := 1; i < pages+2; i++ {
		idx, err := c.AdvanceDialogue()
		if err != nil {
			t.Fatalf("AdvanceDialogue failed: %v", err)
		}
		want := i
		if want > pages-1 {
			want = pages - 1
		}
		if idx != want {
			t.Errorf("Advance %d: expected index %d, got %d", i, want, idx)
		}
	}

	if _, err := c.DismissDialogue(); err != nil {
		t.Fatalf("DismissDialogue failed: %v", err)
	}
	if r := c.TapStation("helpDesk"); r.Reason != ReasonCompleted {
		t.Errorf("Expected station taps to be ignored after completion, got %+v", r)
	}
	if r := c.TapCell(Cell{X: 6, Y: 3}); !r.Accepted {
		t.Errorf("Expected free walking after completion, got %+v", r)
	}
}

func TestControllerInterrupt(t *testing.T) {
	c, pos := newTestController(t, "atm", Cell{X: 3, Y: 3}, testTiming(), nil)

	c.TapCell(Cell{X: 0, Y: 3})
	c.Tick(500 * time.Millisecond)

	snap := c.Snapshot()
	if snap.Settled != (Cell{X: 3, Y: 3}) {
		t.Errorf("Expected settled cell to stay (3,3) mid-movement, got %v", snap.Settled)
	}
	if snap.Position.X >= 2 || snap.Position.X <= 1 {
		t.Errorf("Expected interpolated x between 1 and 2, got %v", snap.Position.X)
	}

	events := c.Interrupt()
	if !equalTypes(eventTypes(events), EventInterrupted) || *events[0].Cell != (Cell{X: 2, Y: 3}) {
		t.Errorf("Expected interrupted at (2,3), got %+v", events)
	}
	if pos.Get() != (Cell{X: 2, Y: 3}) || c.State() != StateIdle {
		t.Errorf("Expected idle at (2,3), got %v in %s", pos.Get(), c.State())
	}
	if events := c.Interrupt(); len(events) != 0 {
		t.Errorf("Expected interrupt while idle to do nothing, got %v", events)
	}
}

func TestControllerListenerSeesEventsInOrder(t *testing.T) {
	var seen []EventType
	listener := ListenerFunc(func(e Event) {
		seen = append(seen, e.Type)
	})
	c, _ := newTestController(t, "atm", Cell{X: 3, Y: 3}, testTiming(), listener)

	c.TapStation("atm")
	// Partial ticks never emit duplicate steps
	for i := 0; i < 100; i++ {
		c.Tick(16 * time.Millisecond)
	}
	c.DismissDialogue()

	if !equalTypes(seen, EventStep, EventStep, EventArrived, EventDialogue, EventCompleted) {
		t.Errorf("Unexpected listener events %v", seen)
	}
}

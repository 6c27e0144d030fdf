package main

import (
	"sort"

	"github.com/wricardo/bank-branch-game/game/engine"
	"github.com/zyedidia/generic/mapset"
)

// Strategy picks the station to tap for the current exercise
type Strategy interface {
	// Choose returns the station to try next, or false when it has run out of ideas
	Choose(state *engine.GameSnapshot) (string, bool)
	// Rejected records a wrong station for an exercise
	Rejected(exerciseID, station string)
	// Reset forgets everything learned so far
	Reset()
}

// OracleStrategy reads the target straight from the snapshot. It plays a
// flawless run and is useful as a timing baseline.
type OracleStrategy struct{}

func (OracleStrategy) Choose(state *engine.GameSnapshot) (string, bool) {
	if state.Exercise.TargetStation == "" {
		return "", false
	}
	return state.Exercise.TargetStation, true
}

func (OracleStrategy) Rejected(string, string) {}

func (OracleStrategy) Reset() {}

// GuessStrategy ignores the target and tries the targetable stations closest
// first, skipping the ones already rejected for the exercise.
type GuessStrategy struct {
	// distance returns the walk length in steps to a station, or -1 if unreachable
	distance func(station string) int
	tried    map[string]mapset.Set[string]
}

// NewGuessStrategy creates a guesser that orders candidates by distance
func NewGuessStrategy(distance func(station string) int) *GuessStrategy {
	return &GuessStrategy{
		distance: distance,
		tried:    make(map[string]mapset.Set[string]),
	}
}

func (s *GuessStrategy) Choose(state *engine.GameSnapshot) (string, bool) {
	tried := s.tried[state.Exercise.ID]

	type candidate struct {
		key      string
		distance int
	}
	var candidates []candidate
	for _, st := range state.Stations {
		if !st.Targetable() {
			continue
		}
		if tried.Has(st.Key) {
			continue
		}
		d := s.distance(st.Key)
		if d < 0 {
			continue
		}
		candidates = append(candidates, candidate{key: st.Key, distance: d})
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].key < candidates[j].key
	})
	return candidates[0].key, true
}

func (s *GuessStrategy) Rejected(exerciseID, station string) {
	tried, ok := s.tried[exerciseID]
	if !ok {
		tried = mapset.New[string]()
		s.tried[exerciseID] = tried
	}
	tried.Put(station)
}

func (s *GuessStrategy) Reset() {
	s.tried = make(map[string]mapset.Set[string])
}

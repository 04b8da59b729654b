// Package reconcile is the declarative-audio reconciler: it diffs the
// previously flattened instance lists against a freshly flattened pair
// and emits the minimal, ordered command sequence that brings the
// engine's playing set in line with what was just declared.
package reconcile

import (
	"sort"

	"github.com/simukka/declarative-audio/flatten"
)

// State holds every running sound and oscillator instance, keyed by a
// stable NodeGroupID, plus the counter that assigns fresh ids. The zero
// value is not usable; construct with NewState.
type State struct {
	Sounds      map[NodeGroupID]flatten.Sound
	Oscillators map[NodeGroupID]flatten.Oscillator
	counter     int
}

// NewState returns an empty reconciler state with no running instances.
func NewState() State {
	return State{
		Sounds:      make(map[NodeGroupID]flatten.Sound),
		Oscillators: make(map[NodeGroupID]flatten.Oscillator),
	}
}

// Counter reports the next id the state would assign. Exposed for the
// monotonicity property test; reconcile logic never needs to read it
// from outside this package.
func (s State) Counter() int {
	return s.counter
}

func sortedSoundKeys(m map[NodeGroupID]flatten.Sound) []NodeGroupID {
	keys := make([]NodeGroupID, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedOscillatorKeys(m map[NodeGroupID]flatten.Oscillator) []NodeGroupID {
	keys := make([]NodeGroupID, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

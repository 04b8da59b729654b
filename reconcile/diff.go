package reconcile

import (
	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/flatten"
)

// Reconcile diffs state against the freshly flattened sounds and
// oscillators, returning the next state and the ordered commands an
// engine must execute to catch up. Calling Reconcile again immediately
// with the same flattened lists returns an empty command slice and an
// unchanged state.
func Reconcile(state State, sounds []flatten.Sound, oscillators []flatten.Oscillator) (State, []Command) {
	oscCommands, newOscillators, counter := reconcileOscillators(state.Oscillators, oscillators, state.counter)
	soundCommands, newSounds, counter := reconcileSounds(state.Sounds, sounds, counter)

	next := State{Sounds: newSounds, Oscillators: newOscillators, counter: counter}

	commands := make([]Command, 0, len(oscCommands)+len(soundCommands))
	commands = append(commands, oscCommands...)
	commands = append(commands, soundCommands...)
	return next, commands
}

func reconcileSounds(old map[NodeGroupID]flatten.Sound, newList []flatten.Sound, counter int) ([]Command, map[NodeGroupID]flatten.Sound, int) {
	next := make(map[NodeGroupID]flatten.Sound, len(old))
	taken := make([]bool, len(newList))
	var commands []Command

	for _, id := range sortedSoundKeys(old) {
		oldSound := old[id]
		key := oldSound.Identity()

		firstCandidate, perfect := -1, -1
		for i, candidate := range newList {
			if taken[i] || candidate.Identity() != key {
				continue
			}
			if firstCandidate == -1 {
				firstCandidate = i
			}
			if candidate.Equal(oldSound) {
				perfect = i
				break
			}
		}

		switch {
		case perfect != -1:
			taken[perfect] = true
			next[id] = oldSound
		case firstCandidate != -1:
			taken[firstCandidate] = true
			newSound := newList[firstCandidate]
			next[id] = newSound
			commands = append(commands, soundMutationCommands(id, oldSound, newSound)...)
		default:
			commands = append(commands, StopSound{NodeGroupID: id})
		}
	}

	for i, sound := range newList {
		if taken[i] {
			continue
		}
		id := NodeGroupID(counter)
		counter++
		next[id] = sound
		commands = append(commands, StartSound{NodeGroupID: id, Sound: sound})
	}

	return commands, next, counter
}

func soundMutationCommands(id NodeGroupID, old, next flatten.Sound) []Command {
	var commands []Command
	if old.Volume != next.Volume {
		commands = append(commands, SetVolume{NodeGroupID: id, Volume: next.Volume})
	}
	if !old.Loop.Equal(next.Loop) {
		commands = append(commands, SetLoopConfig{NodeGroupID: id, Loop: next.Loop})
	}
	if old.PlaybackRate != next.PlaybackRate {
		commands = append(commands, SetPlaybackRate{NodeGroupID: id, PlaybackRate: next.PlaybackRate})
	}
	if !timelinesEqual(old.VolumeTimelines, next.VolumeTimelines) {
		commands = append(commands, SetVolumeAt{NodeGroupID: id, VolumeTimelines: next.VolumeTimelines})
	}
	return commands
}

func reconcileOscillators(old map[NodeGroupID]flatten.Oscillator, newList []flatten.Oscillator, counter int) ([]Command, map[NodeGroupID]flatten.Oscillator, int) {
	next := make(map[NodeGroupID]flatten.Oscillator, len(old))
	taken := make([]bool, len(newList))
	var commands []Command

	for _, id := range sortedOscillatorKeys(old) {
		oldOsc := old[id]
		key := oldOsc.Identity()

		firstCandidate, perfect := -1, -1
		for i, candidate := range newList {
			if taken[i] || candidate.Identity() != key {
				continue
			}
			if firstCandidate == -1 {
				firstCandidate = i
			}
			if candidate.Equal(oldOsc) {
				perfect = i
				break
			}
		}

		switch {
		case perfect != -1:
			taken[perfect] = true
			next[id] = oldOsc
		case firstCandidate != -1:
			taken[firstCandidate] = true
			newOsc := newList[firstCandidate]
			next[id] = newOsc
			commands = append(commands, oscillatorMutationCommands(id, oldOsc, newOsc)...)
		default:
			commands = append(commands, StopSound{NodeGroupID: id})
		}
	}

	for i, osc := range newList {
		if taken[i] {
			continue
		}
		id := NodeGroupID(counter)
		counter++
		next[id] = osc
		commands = append(commands, StartOscillator{NodeGroupID: id, Oscillator: osc})
	}

	return commands, next, counter
}

func oscillatorMutationCommands(id NodeGroupID, old, next flatten.Oscillator) []Command {
	var commands []Command
	if old.Volume != next.Volume {
		commands = append(commands, SetVolume{NodeGroupID: id, Volume: next.Volume})
	}
	if !timelinesEqual(old.VolumeTimelines, next.VolumeTimelines) {
		commands = append(commands, SetVolumeAt{NodeGroupID: id, VolumeTimelines: next.VolumeTimelines})
	}
	return commands
}

func timelinesEqual(a, b [][]audiotree.VolumePoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

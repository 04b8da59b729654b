// Package flatten collapses an audiotree.Tree into the normalized
// instance lists the reconciler diffs against. It is total and
// deterministic: it never allocates node group ids and never inspects
// engine state.
package flatten

import "github.com/simukka/declarative-audio/audiotree"

// Sound is a normalized file-playback instance.
type Sound struct {
	Source          audiotree.Source
	StartTime       audiotree.Timestamp
	StartAt         audiotree.Millis
	Volume          float64
	VolumeTimelines [][]audiotree.VolumePoint
	Loop            *audiotree.LoopConfig
	PlaybackRate    float64
}

// IdentityKey is the tuple the reconciler matches sounds on. Volume,
// loop, and playback rate may change without changing identity.
type IdentityKey struct {
	Source    audiotree.Source
	StartTime audiotree.Timestamp
	StartAt   audiotree.Millis
}

// Identity returns s's identity key.
func (s Sound) Identity() IdentityKey {
	return IdentityKey{Source: s.Source, StartTime: s.StartTime, StartAt: s.StartAt}
}

// Equal reports field-wise equality, driving the reconciler's
// perfect-match shortcut.
func (s Sound) Equal(other Sound) bool {
	if s.Source != other.Source || s.StartTime != other.StartTime ||
		s.StartAt != other.StartAt || s.Volume != other.Volume ||
		s.PlaybackRate != other.PlaybackRate || !s.Loop.Equal(other.Loop) {
		return false
	}
	return timelinesEqual(s.VolumeTimelines, other.VolumeTimelines)
}

// Oscillator is a normalized oscillator instance.
type Oscillator struct {
	Type            audiotree.OscillatorType
	StartTime       audiotree.Timestamp
	Volume          float64
	VolumeTimelines [][]audiotree.VolumePoint
}

// OscillatorIdentityKey is the tuple oscillators are matched on. Per
// §4.3, it is StartTime alone: two oscillators declared at the same
// instant are not individually distinguishable.
type OscillatorIdentityKey struct {
	StartTime audiotree.Timestamp
}

// Identity returns o's identity key.
func (o Oscillator) Identity() OscillatorIdentityKey {
	return OscillatorIdentityKey{StartTime: o.StartTime}
}

// Equal reports field-wise equality.
func (o Oscillator) Equal(other Oscillator) bool {
	if o.Type != other.Type || o.StartTime != other.StartTime || o.Volume != other.Volume {
		return false
	}
	return timelinesEqual(o.VolumeTimelines, other.VolumeTimelines)
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

// Flatten collapses tree into its normalized sound and oscillator lists,
// preserving declaration order within each.
func Flatten(tree audiotree.Tree) (sounds []Sound, oscillators []Oscillator) {
	return flatten(tree, 1, nil)
}

func flatten(tree audiotree.Tree, volume float64, timelines [][]audiotree.VolumePoint) (sounds []Sound, oscillators []Oscillator) {
	switch node := tree.(type) {
	case audiotree.GroupNode:
		for _, child := range node.Children {
			childSounds, childOscillators := flatten(child, volume, timelines)
			sounds = append(sounds, childSounds...)
			oscillators = append(oscillators, childOscillators...)
		}
		return sounds, oscillators

	case audiotree.FilePlaybackNode:
		return []Sound{{
			Source:          node.Source,
			StartTime:       node.StartTime,
			StartAt:         node.Settings.StartAt,
			Volume:          volume,
			VolumeTimelines: timelines,
			Loop:            node.Settings.Loop,
			PlaybackRate:    node.Settings.PlaybackRate,
		}}, nil

	case audiotree.OscillatorNode:
		return nil, []Oscillator{{
			Type:            node.Type,
			StartTime:       node.StartTime,
			Volume:          volume,
			VolumeTimelines: timelines,
		}}

	case audiotree.EffectNode:
		switch kind := node.Kind.(type) {
		case audiotree.ScaleVolumeKind:
			return flatten(node.Child, volume*kind.Factor, timelines)
		case audiotree.ScaleVolumeAtKind:
			stacked := append([][]audiotree.VolumePoint{kind.Points}, timelines...)
			return flatten(node.Child, volume, stacked)
		default:
			return nil, nil
		}

	default:
		return nil, nil
	}
}

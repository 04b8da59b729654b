package reconcile

import (
	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/flatten"
)

// NodeGroupID is the stable handle a running sound or oscillator keeps
// across ticks. Ids are assigned by State's internal counter, are never
// reused, and the sound/oscillator id sets are always disjoint.
type NodeGroupID int

// Command is the sum type of imperative instructions the reconciler
// emits for the engine to execute. Sealed to this package.
type Command interface {
	commandNode()
}

// StartSound begins playing a new sound instance.
type StartSound struct {
	NodeGroupID NodeGroupID
	Sound       flatten.Sound
}

func (StartSound) commandNode() {}

// StopSound ends a running sound or oscillator instance. The same
// command shape serves both; which instance map it came from is not
// part of the wire contract.
type StopSound struct {
	NodeGroupID NodeGroupID
}

func (StopSound) commandNode() {}

// SetVolume changes the static volume of a running instance.
type SetVolume struct {
	NodeGroupID NodeGroupID
	Volume      float64
}

func (SetVolume) commandNode() {}

// SetVolumeAt replaces a running instance's volume-over-time timelines.
type SetVolumeAt struct {
	NodeGroupID     NodeGroupID
	VolumeTimelines [][]audiotree.VolumePoint
}

func (SetVolumeAt) commandNode() {}

// SetLoopConfig reconfigures (or clears) the loop region of a running
// sound. Not applicable to oscillators.
type SetLoopConfig struct {
	NodeGroupID NodeGroupID
	Loop        *audiotree.LoopConfig
}

func (SetLoopConfig) commandNode() {}

// SetPlaybackRate changes the playback rate of a running sound. Not
// applicable to oscillators.
type SetPlaybackRate struct {
	NodeGroupID  NodeGroupID
	PlaybackRate float64
}

func (SetPlaybackRate) commandNode() {}

// StartOscillator begins a new oscillator instance.
type StartOscillator struct {
	NodeGroupID NodeGroupID
	Oscillator  flatten.Oscillator
}

func (StartOscillator) commandNode() {}

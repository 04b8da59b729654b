// Package harness is the host-integration layer (C6). It wraps an
// arbitrary host's own init/update/view cycle and, after every host
// tick, runs the flattener and reconciler and hands back one outgoing
// wire batch. It does not interpret host messages or host state beyond
// asking the host, via Audio, what should currently be playing.
package harness

import (
	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/flatten"
	"github.com/simukka/declarative-audio/loader"
	"github.com/simukka/declarative-audio/reconcile"
	"github.com/simukka/declarative-audio/wire"
)

// ContextStatus tracks whether the engine's AudioContext has come up yet.
type ContextStatus int

const (
	LoadingContext ContextStatus = iota
	Ready
)

// AudioState is the audio subsystem's own slice of combinedState: the
// reconciler's instance maps and counter, the pending-load table, and
// the context-readiness flag. A host never constructs or inspects this
// directly; it only carries it alongside its own state.
type AudioState struct {
	Reconciler       reconcile.State
	Tracker          *loader.Tracker
	Status           ContextStatus
	SamplesPerSecond int
}

// NewAudioState builds the initial audio state. maxSimultaneousLoads is
// forwarded to the load tracker (0 = unbounded).
func NewAudioState(maxSimultaneousLoads int) AudioState {
	return AudioState{
		Reconciler: reconcile.NewState(),
		Tracker:    loader.NewTracker(maxSimultaneousLoads),
		Status:     LoadingContext,
	}
}

// CombinedState pairs the host's own state with the audio subsystem's
// state. This is the combinedState §4.6 threads through init/update/view.
type CombinedState[H any] struct {
	Host  H
	Audio AudioState
}

// Host is the boundary contract this package wraps: a conventional
// init/update cycle, plus Audio, the one extra entry point the host
// uses to declare what should currently be audible.
type Host[H any] interface {
	Init() (H, []loader.LoadCommand)
	Update(msg interface{}, host H) (H, []loader.LoadCommand)
	Audio(host H) audiotree.Tree
}

// OutgoingBatch is what one tick produces for the engine: the
// reconciler's command list plus any newly issued load requests.
type OutgoingBatch struct {
	Commands []reconcile.Command
	Loads    []wire.LoadRequest
}

func tick[H any](h Host[H], combined CombinedState[H], loads []loader.LoadCommand) (CombinedState[H], OutgoingBatch) {
	requests := combined.Audio.Tracker.Enqueue(loads)

	tree := h.Audio(combined.Host)
	sounds, oscillators := flatten.Flatten(tree)
	nextReconciler, commands := reconcile.Reconcile(combined.Audio.Reconciler, sounds, oscillators)
	combined.Audio.Reconciler = nextReconciler

	return combined, OutgoingBatch{Commands: commands, Loads: requests}
}

// Init runs the host's own Init, then immediately reconciles: load
// commands returned from Init are enqueued and declarations made before
// the engine is Ready are still reconciled and delivered, per §4.6.
func Init[H any](h Host[H], maxSimultaneousLoads int) (CombinedState[H], OutgoingBatch) {
	hostState, loads := h.Init()
	combined := CombinedState[H]{Host: hostState, Audio: NewAudioState(maxSimultaneousLoads)}
	return tick(h, combined, loads)
}

// Update runs the host's own Update with msg, then reconciles.
func Update[H any](h Host[H], msg interface{}, combined CombinedState[H]) (CombinedState[H], OutgoingBatch) {
	hostState, loads := h.Update(msg, combined.Host)
	combined.Host = hostState
	return tick(h, combined, loads)
}

// Subscribe relays one inbound engine event into the combined state: it
// flips LoadingContext to Ready on the first ContextInitializedEvent and
// resolves pending loads against their callbacks for every other event.
// Resolving a load may invoke a host-supplied callback, but it is the
// host's own next Update call (driven by that callback) that turns the
// resulting state change into a new audio declaration — this function
// does not call back into the host cycle itself.
func Subscribe[H any](combined CombinedState[H], event wire.InboundEvent) CombinedState[H] {
	switch e := event.(type) {
	case wire.ContextInitializedEvent:
		if combined.Audio.Status == LoadingContext {
			combined.Audio.Status = Ready
			combined.Audio.SamplesPerSecond = e.SamplesPerSecond
		}
	default:
		combined.Audio.Tracker.Resolve(event)
	}
	return combined
}

// View is a pass-through: this package does not interpret the host's
// view, it only forwards the host half of the combined state to it.
func View[H any, V any](viewFn func(H) V, combined CombinedState[H]) V {
	return viewFn(combined.Host)
}

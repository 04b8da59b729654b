package harness

import (
	"testing"

	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/loader"
	"github.com/simukka/declarative-audio/reconcile"
	"github.com/simukka/declarative-audio/wire"
)

// jukeboxState is a minimal host model: either idle or playing one
// buffer. It exists only to exercise the harness contract.
type jukeboxState struct {
	playing  bool
	bufferID int
}

type playMsg struct{ bufferID int }
type stopMsg struct{}

type jukebox struct{}

func (jukebox) Init() (jukeboxState, []loader.LoadCommand) {
	return jukeboxState{}, nil
}

func (jukebox) Update(msg interface{}, state jukeboxState) (jukeboxState, []loader.LoadCommand) {
	switch m := msg.(type) {
	case playMsg:
		state.playing = true
		state.bufferID = m.bufferID
	case stopMsg:
		state.playing = false
	}
	return state, nil
}

func (jukebox) Audio(state jukeboxState) audiotree.Tree {
	if !state.playing {
		return audiotree.Silence()
	}
	return audiotree.Audio(audiotree.Source{BufferID: state.bufferID}, 0)
}

func TestInitWithNothingPlayingEmitsNoCommands(t *testing.T) {
	_, batch := Init[jukeboxState](jukebox{}, 0)
	if len(batch.Commands) != 0 {
		t.Errorf("expected no commands from a silent host, got %+v", batch.Commands)
	}
}

func TestUpdateStartsAndStopsPlayback(t *testing.T) {
	combined, _ := Init[jukeboxState](jukebox{}, 0)

	combined, batch := Update[jukeboxState](jukebox{}, playMsg{bufferID: 7}, combined)
	if len(batch.Commands) != 1 {
		t.Fatalf("expected 1 command, got %+v", batch.Commands)
	}
	if _, ok := batch.Commands[0].(reconcile.StartSound); !ok {
		t.Errorf("expected StartSound, got %+v", batch.Commands[0])
	}

	_, batch = Update[jukeboxState](jukebox{}, stopMsg{}, combined)
	if len(batch.Commands) != 1 {
		t.Fatalf("expected 1 command, got %+v", batch.Commands)
	}
	if _, ok := batch.Commands[0].(reconcile.StopSound); !ok {
		t.Errorf("expected StopSound, got %+v", batch.Commands[0])
	}
}

func TestUpdateIsIdempotentWhenDeclarationUnchanged(t *testing.T) {
	combined, _ := Init[jukeboxState](jukebox{}, 0)
	combined, _ = Update[jukeboxState](jukebox{}, playMsg{bufferID: 1}, combined)

	_, batch := Update[jukeboxState](jukebox{}, playMsg{bufferID: 1}, combined)
	if len(batch.Commands) != 0 {
		t.Errorf("expected no commands on a repeat declaration, got %+v", batch.Commands)
	}
}

func TestSubscribeTransitionsToReadyOnContextInitialized(t *testing.T) {
	combined, _ := Init[jukeboxState](jukebox{}, 0)
	if combined.Audio.Status != LoadingContext {
		t.Fatalf("expected LoadingContext initially, got %v", combined.Audio.Status)
	}

	combined = Subscribe(combined, wire.ContextInitializedEvent{SamplesPerSecond: 48000})
	if combined.Audio.Status != Ready {
		t.Errorf("expected Ready after ContextInitializedEvent, got %v", combined.Audio.Status)
	}
	if combined.Audio.SamplesPerSecond != 48000 {
		t.Errorf("expected SamplesPerSecond 48000, got %d", combined.Audio.SamplesPerSecond)
	}
}

func TestSubscribeIgnoresSecondContextInitialized(t *testing.T) {
	combined, _ := Init[jukeboxState](jukebox{}, 0)
	combined = Subscribe(combined, wire.ContextInitializedEvent{SamplesPerSecond: 48000})
	combined = Subscribe(combined, wire.ContextInitializedEvent{SamplesPerSecond: 44100})
	if combined.Audio.SamplesPerSecond != 48000 {
		t.Errorf("expected first SamplesPerSecond to stick, got %d", combined.Audio.SamplesPerSecond)
	}
}

func TestDeclarationsBeforeReadyAreStillReconciled(t *testing.T) {
	combined, batch := Init[jukeboxState](jukebox{}, 0)
	combined, batch = Update[jukeboxState](jukebox{}, playMsg{bufferID: 3}, combined)
	if combined.Audio.Status != LoadingContext {
		t.Fatalf("expected context still loading, got %v", combined.Audio.Status)
	}
	if len(batch.Commands) != 1 {
		t.Errorf("expected the declaration to be reconciled despite LoadingContext, got %+v", batch.Commands)
	}
}

func TestSubscribeResolvesPendingLoad(t *testing.T) {
	combined, _ := Init[jukeboxState](jukebox{}, 0)
	var got loader.Result
	requests := combined.Audio.Tracker.Enqueue([]loader.LoadCommand{
		{URL: "song.mp3", Callback: func(r loader.Result) { got = r }},
	})

	combined = Subscribe(combined, wire.LoadSucceededEvent{
		RequestID:         requests[0].RequestID,
		BufferID:          7,
		DurationInSeconds: 123,
	})

	if !got.IsOk() || got.Source.BufferID != 7 {
		t.Errorf("expected resolved load with bufferId 7, got %+v", got)
	}
	if combined.Audio.Tracker.Pending() != 0 {
		t.Errorf("expected no pending loads left, got %d", combined.Audio.Tracker.Pending())
	}
}

func TestViewPassesThroughHostState(t *testing.T) {
	combined, _ := Init[jukeboxState](jukebox{}, 0)
	combined, _ = Update[jukeboxState](jukebox{}, playMsg{bufferID: 9}, combined)

	bufferID := View(func(s jukeboxState) int { return s.bufferID }, combined)
	if bufferID != 9 {
		t.Errorf("expected view to reflect host state, got %d", bufferID)
	}
}

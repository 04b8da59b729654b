package loader

import (
	"testing"

	"github.com/simukka/declarative-audio/wire"
)

func TestEnqueueAssignsMonotonicIDs(t *testing.T) {
	tr := NewTracker(0)
	requests := tr.Enqueue([]LoadCommand{
		{URL: "a.mp3"},
		{URL: "b.mp3"},
	})
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %+v", requests)
	}
	if requests[0].RequestID != 0 || requests[1].RequestID != 1 {
		t.Errorf("expected ids 0,1 in order, got %+v", requests)
	}
	if requests[0].AudioURL != "a.mp3" || requests[1].AudioURL != "b.mp3" {
		t.Errorf("expected URLs preserved, got %+v", requests)
	}
	if tr.Pending() != 2 {
		t.Errorf("expected 2 pending, got %d", tr.Pending())
	}
}

func TestEnqueueIDsNeverReusedAcrossBatches(t *testing.T) {
	tr := NewTracker(0)
	first := tr.Enqueue([]LoadCommand{{URL: "a.mp3"}})
	second := tr.Enqueue([]LoadCommand{{URL: "b.mp3"}})
	if second[0].RequestID <= first[0].RequestID {
		t.Errorf("expected strictly increasing ids, got %d then %d", first[0].RequestID, second[0].RequestID)
	}
}

func TestResolveSuccessInvokesCallbackOnce(t *testing.T) {
	tr := NewTracker(0)
	calls := 0
	var got Result
	requests := tr.Enqueue([]LoadCommand{{URL: "a.mp3", Callback: func(r Result) {
		calls++
		got = r
	}}})

	tr.Resolve(wire.LoadSucceededEvent{RequestID: requests[0].RequestID, BufferID: 7, DurationInSeconds: 3.5})

	if calls != 1 {
		t.Fatalf("expected callback invoked once, got %d", calls)
	}
	if !got.IsOk() {
		t.Fatalf("expected Ok result, got %+v", got)
	}
	if got.Source.BufferID != 7 || got.Source.DurationInSeconds != 3.5 {
		t.Errorf("expected source {7, 3.5}, got %+v", got.Source)
	}
	if tr.Pending() != 0 {
		t.Errorf("expected request removed from pending table, got %d still pending", tr.Pending())
	}
}

func TestResolveFailureInvokesCallbackWithError(t *testing.T) {
	tr := NewTracker(0)
	var got Result
	requests := tr.Enqueue([]LoadCommand{{URL: "a.mp3", Callback: func(r Result) { got = r }}})

	tr.Resolve(wire.LoadFailedEvent{RequestID: requests[0].RequestID, Error: wire.NetworkError})

	if got.IsOk() {
		t.Fatalf("expected failed result, got %+v", got)
	}
	loadErr, ok := got.Err.(*LoadError)
	if !ok || loadErr.Kind != wire.NetworkError {
		t.Errorf("expected *LoadError{NetworkError}, got %+v", got.Err)
	}
}

func TestResolveUnknownRequestIDIsSilentlyDropped(t *testing.T) {
	tr := NewTracker(0)
	calls := 0
	tr.Enqueue([]LoadCommand{{URL: "a.mp3", Callback: func(Result) { calls++ }}})

	tr.Resolve(wire.LoadSucceededEvent{RequestID: 999, BufferID: 1})

	if calls != 0 {
		t.Errorf("expected no callback invoked for unknown id, got %d calls", calls)
	}
	if tr.Pending() != 1 {
		t.Errorf("expected the real pending request untouched, got %d pending", tr.Pending())
	}
}

func TestResolveTwiceOnlyInvokesCallbackOnce(t *testing.T) {
	tr := NewTracker(0)
	calls := 0
	requests := tr.Enqueue([]LoadCommand{{URL: "a.mp3", Callback: func(Result) { calls++ }}})

	event := wire.LoadSucceededEvent{RequestID: requests[0].RequestID, BufferID: 1}
	tr.Resolve(event)
	tr.Resolve(event)

	if calls != 1 {
		t.Errorf("expected exactly 1 callback invocation across duplicate resolves, got %d", calls)
	}
}

func TestEnqueueRejectsBeyondSimultaneousCap(t *testing.T) {
	tr := NewTracker(1)
	var firstOK, secondErr bool
	requests := tr.Enqueue([]LoadCommand{
		{URL: "a.mp3", Callback: func(r Result) { firstOK = r.IsOk() }},
		{URL: "b.mp3", Callback: func(r Result) {
			secondErr = !r.IsOk()
			if loadErr, ok := r.Err.(*LoadError); !ok || loadErr.Kind != wire.ExceededMaxSimultaneousLoads {
				t.Errorf("expected ExceededMaxSimultaneousLoads, got %+v", r.Err)
			}
		}},
	})

	if len(requests) != 1 {
		t.Fatalf("expected only the first request to be emitted, got %+v", requests)
	}
	if !secondErr {
		t.Errorf("expected second load's callback invoked synchronously with an error")
	}
	if firstOK {
		t.Errorf("expected first load's callback not yet invoked (still pending)")
	}
	if tr.Pending() != 1 {
		t.Errorf("expected 1 pending request under the cap, got %d", tr.Pending())
	}
}

func TestZeroCapIsUnbounded(t *testing.T) {
	tr := NewTracker(0)
	loads := make([]LoadCommand, 50)
	for i := range loads {
		loads[i] = LoadCommand{URL: "a.mp3"}
	}
	requests := tr.Enqueue(loads)
	if len(requests) != 50 {
		t.Errorf("expected all 50 requests emitted with no cap, got %d", len(requests))
	}
}

// Package loader is the pending-request table (C5): it assigns ids to
// asynchronous load requests and routes the engine's eventual
// completion or failure back to the host-supplied callback.
package loader

import (
	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/wire"
)

// Result is what a load callback receives: either a usable Source or an
// error drawn from the load error taxonomy.
type Result struct {
	Source audiotree.Source
	Err    error
}

// Ok builds a successful Result.
func Ok(source audiotree.Source) Result {
	return Result{Source: source}
}

// Err builds a failed Result.
func Err(err error) Result {
	return Result{Err: err}
}

// IsOk reports whether the load succeeded.
func (r Result) IsOk() bool {
	return r.Err == nil
}

// LoadError wraps one of the taxonomy kinds from package wire so callers
// can distinguish load failures from other errors with errors.As.
type LoadError struct {
	Kind wire.LoadErrorKind
}

func (e *LoadError) Error() string {
	return string(e.Kind)
}

// Callback is invoked exactly once, when the load resolves.
type Callback func(Result)

// LoadCommand is the command value loadAudio returns: a host hands it to
// the runtime, which assigns it a request id and emits the wire request.
type LoadCommand struct {
	URL      string
	Callback Callback
}

// LoadAudio builds a LoadCommand. The host calls this from its own
// update function and returns the result as part of its outgoing
// commands; it does not call the tracker directly.
func LoadAudio(callback Callback, url string) LoadCommand {
	return LoadCommand{URL: url, Callback: callback}
}

type pendingRequest struct {
	callback Callback
	url      string
}

// Tracker owns the pending-request table and the monotonic request
// counter. The zero value is not usable; construct with NewTracker.
type Tracker struct {
	pending         map[int]pendingRequest
	count           int
	maxSimultaneous int // 0 = unbounded, matching §5's "no fixed upper bound"
}

// NewTracker returns an empty tracker. maxSimultaneous of 0 means no cap;
// a positive value makes Enqueue reject loads beyond that many
// concurrently pending requests with ExceededMaxSimultaneousLoads.
func NewTracker(maxSimultaneous int) *Tracker {
	return &Tracker{pending: make(map[int]pendingRequest), maxSimultaneous: maxSimultaneous}
}

// Pending reports how many requests are currently awaiting a reply.
func (t *Tracker) Pending() int {
	return len(t.pending)
}

// Enqueue assigns each load a fresh, monotonically increasing request
// id and inserts it into the pending table, returning the wire requests
// to emit alongside this tick's reconciler commands. A load that would
// exceed the configured cap never enters the table: its callback is
// invoked synchronously with ExceededMaxSimultaneousLoads and it is
// omitted from the returned batch.
func (t *Tracker) Enqueue(loads []LoadCommand) []wire.LoadRequest {
	requests := make([]wire.LoadRequest, 0, len(loads))
	for _, load := range loads {
		if t.maxSimultaneous > 0 && len(t.pending) >= t.maxSimultaneous {
			if load.Callback != nil {
				load.Callback(Err(&LoadError{Kind: wire.ExceededMaxSimultaneousLoads}))
			}
			continue
		}
		id := t.count
		t.count++
		t.pending[id] = pendingRequest{callback: load.Callback, url: load.URL}
		requests = append(requests, wire.LoadRequest{AudioURL: load.URL, RequestID: id})
	}
	return requests
}

// Resolve routes one inbound engine event to its pending callback, if
// any. Events with no matching request id (already resolved, or never
// issued by this tracker) are dropped silently — idempotent retry
// safety per §4.5.
func (t *Tracker) Resolve(event wire.InboundEvent) {
	switch e := event.(type) {
	case wire.LoadSucceededEvent:
		t.resolve(e.RequestID, Ok(audiotree.Source{BufferID: e.BufferID, DurationInSeconds: e.DurationInSeconds}))
	case wire.LoadFailedEvent:
		t.resolve(e.RequestID, Err(&LoadError{Kind: e.Error}))
	}
}

func (t *Tracker) resolve(id int, result Result) {
	req, ok := t.pending[id]
	if !ok {
		return
	}
	delete(t.pending, id)
	if req.callback != nil {
		req.callback(result)
	}
}

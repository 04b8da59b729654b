//go:build js
// +build js

// Command browser is the in-browser entry point: it wires the harness
// (package harness) to the gopherjs reference engine (package jsengine)
// and exposes a small JS API, the way the teacher's root main.go exposes
// StarshipMultiplayer to JS.
package main

import (
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/harness"
	"github.com/simukka/declarative-audio/jsengine"
	"github.com/simukka/declarative-audio/loader"
	"github.com/simukka/declarative-audio/wire"
)

// browserState is a deliberately small host model: a single named track
// that is either playing or not. Real hosts wire their own model in its
// place; this one exists to give the exposed JS API something to drive.
type browserState struct {
	playing bool
	url     string
	source  *audiotree.Source
}

type playMsg struct{ url string }
type stopMsg struct{}
type loadedMsg struct{ result loader.Result }

type browserHost struct{}

func (browserHost) Init() (browserState, []loader.LoadCommand) {
	return browserState{}, nil
}

func (browserHost) Update(msg interface{}, state browserState) (browserState, []loader.LoadCommand) {
	switch m := msg.(type) {
	case playMsg:
		state.playing = true
		if state.url != m.url {
			state.url = m.url
			state.source = nil
		}
		if state.source == nil {
			return state, []loader.LoadCommand{loader.LoadAudio(onLoadResolved, m.url)}
		}
	case stopMsg:
		state.playing = false
	case loadedMsg:
		if m.result.IsOk() {
			src := m.result.Source
			state.source = &src
		}
	}
	return state, nil
}

func (browserHost) Audio(state browserState) audiotree.Tree {
	if !state.playing || state.source == nil {
		return audiotree.Silence()
	}
	return audiotree.Audio(*state.source, audiotree.Timestamp(js.Global.Get("Date").Call("now").Int64()))
}

var (
	combined harness.CombinedState[browserState]
	engine   *jsengine.Engine
)

// run drives one harness tick and flushes its outgoing batch straight
// to the engine. Safe without locking: gopherjs callbacks all run on the
// browser's single JS thread, same as the teacher's closures over g in
// its own main().
func run(msg interface{}) {
	var batch harness.OutgoingBatch
	combined, batch = harness.Update[browserState](browserHost{}, msg, combined)
	engine.Apply(batch.Commands)
	for _, req := range batch.Loads {
		engine.LoadAudio(req)
	}
}

func onLoadResolved(r loader.Result) {
	run(loadedMsg{result: r})
}

func onEngineEvent(event wire.InboundEvent) {
	combined = harness.Subscribe(combined, event)
}

func main() {
	engine = jsengine.New(jsengine.DefaultConfig, onEngineEvent)

	var batch harness.OutgoingBatch
	combined, batch = harness.Init[browserState](browserHost{}, 0)
	engine.Apply(batch.Commands)
	for _, req := range batch.Loads {
		engine.LoadAudio(req)
	}

	js.Global.Set("DeclarativeAudio", map[string]interface{}{
		"start": func() {
			engine.Start()
		},
		"play": func(url string) {
			run(playMsg{url: url})
		},
		"stop": func() {
			run(stopMsg{})
		},
	})

	select {}
}

//go:build !js

// Command audiosrv is a native harness driver: it wires a small scripted
// host through the declarative-audio harness without a browser or a
// real Web Audio engine, printing each tick's outgoing wire message to
// stdout. It exists to smoke-test the harness contract (C6) headlessly,
// the same way the teacher's server/main.go is the native counterpart to
// its browser build.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/harness"
	"github.com/simukka/declarative-audio/loader"
	"github.com/simukka/declarative-audio/wire"
)

type demoState struct {
	tick      int
	source    *audiotree.Source
	startTime audiotree.Timestamp
}

type tickMsg struct{}
type loadedMsg struct{ result loader.Result }

// demoHost loads one buffer on its second tick and, once the load
// resolves, declares it playing from then on.
type demoHost struct {
	url      string
	resultCh chan loader.Result
}

func (h demoHost) Init() (demoState, []loader.LoadCommand) {
	return demoState{}, nil
}

func (h demoHost) Update(msg interface{}, state demoState) (demoState, []loader.LoadCommand) {
	switch m := msg.(type) {
	case tickMsg:
		state.tick++
		if state.source == nil && state.tick == 2 {
			return state, []loader.LoadCommand{
				loader.LoadAudio(func(r loader.Result) {
					select {
					case h.resultCh <- r:
					default:
					}
				}, h.url),
			}
		}
	case loadedMsg:
		if m.result.IsOk() {
			src := m.result.Source
			state.source = &src
			state.startTime = audiotree.Timestamp(state.tick * 1000)
		} else {
			log.Printf("load failed: %v", m.result.Err)
		}
	}
	return state, nil
}

func (h demoHost) Audio(state demoState) audiotree.Tree {
	if state.source == nil {
		return audiotree.Silence()
	}
	return audiotree.Audio(*state.source, state.startTime)
}

func logBatch(tick int, batch harness.OutgoingBatch) {
	raw, err := wire.Marshal(batch.Commands, batch.Loads)
	if err != nil {
		log.Fatalf("tick %d: encode failed: %v", tick, err)
	}
	log.Printf("tick %d: %s", tick, raw)
}

func serveHealth(port int) {
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})
	addr := fmt.Sprintf(":%d", port)
	log.Printf("audiosrv health endpoint listening on http://localhost%s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal(err)
	}
}

func main() {
	ticks := flag.Int("ticks", 5, "number of ticks to simulate")
	url := flag.String("url", "song.mp3", "audio URL the demo host loads")
	port := flag.Int("port", 0, "optional health-check HTTP port (0 disables)")
	flag.Parse()
	log.SetOutput(os.Stdout)

	if *port != 0 {
		go serveHealth(*port)
	}

	host := demoHost{url: *url, resultCh: make(chan loader.Result, 1)}

	combined, batch := harness.Init[demoState](host, 0)
	logBatch(0, batch)

	for i := 1; i <= *ticks; i++ {
		combined, batch = harness.Update[demoState](host, tickMsg{}, combined)
		logBatch(i, batch)

		for _, req := range batch.Loads {
			event := wire.LoadSucceededEvent{RequestID: req.RequestID, BufferID: req.RequestID + 1, DurationInSeconds: 10}
			combined = harness.Subscribe(combined, event)
		}

		select {
		case r := <-host.resultCh:
			combined, batch = harness.Update[demoState](host, loadedMsg{result: r}, combined)
			logBatch(i, batch)
		default:
		}
	}
}

//go:build js

// Package jsengine is a concrete, build-tag-gated reference
// implementation of the Web Audio engine the reconciler's commands are
// meant to drive. It is not part of the reconciler's contract — any
// engine that executes the same commands against a real AudioContext is
// equally valid; this one exists so the wire protocol (package wire)
// has a working consumer in this repository.
package jsengine

import (
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/reconcile"
	"github.com/simukka/declarative-audio/wire"
)

type liveSound struct {
	source *js.Object
	gain   *js.Object
}

type liveOscillator struct {
	source *js.Object
	gain   *js.Object
}

// Engine owns one AudioContext and every live node group spawned
// against it, keyed by the node group id the reconciler assigned.
type Engine struct {
	config  Config
	onEvent func(wire.InboundEvent)

	ctx        *js.Object
	masterGain *js.Object

	nextBufferID int
	buffers      map[int]*js.Object

	sounds      map[reconcile.NodeGroupID]*liveSound
	oscillators map[reconcile.NodeGroupID]*liveOscillator
}

// New builds an Engine. onEvent is called whenever the engine has
// something to tell the host: context readiness, or a load's outcome.
func New(config Config, onEvent func(wire.InboundEvent)) *Engine {
	return &Engine{
		config:      config,
		onEvent:     onEvent,
		buffers:     make(map[int]*js.Object),
		sounds:      make(map[reconcile.NodeGroupID]*liveSound),
		oscillators: make(map[reconcile.NodeGroupID]*liveOscillator),
	}
}

// Start brings up the AudioContext. Browsers require this to happen
// inside a user-gesture handler; callers are responsible for that.
func (e *Engine) Start() {
	if e.ctx != nil {
		return
	}
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return
	}
	e.ctx = ctor.New()
	e.masterGain = e.ctx.Call("createGain")
	e.masterGain.Call("connect", e.ctx.Get("destination"))
	e.masterGain.Get("gain").Set("value", e.config.MasterVolume)

	e.onEvent(wire.ContextInitializedEvent{SamplesPerSecond: e.ctx.Get("sampleRate").Int()})
}

// LoadAudio fetches and decodes one pending load request, reporting the
// outcome through onEvent exactly once.
func (e *Engine) LoadAudio(req wire.LoadRequest) {
	if e.ctx == nil {
		e.onEvent(wire.LoadFailedEvent{RequestID: req.RequestID, Error: wire.NetworkError})
		return
	}
	js.Global.Call("fetch", req.AudioURL).Call("then", func(response *js.Object) {
		response.Call("arrayBuffer").Call("then", func(arrayBuffer *js.Object) {
			e.ctx.Call("decodeAudioData", arrayBuffer).Call("then", func(audioBuffer *js.Object) {
				id := e.nextBufferID
				e.nextBufferID++
				e.buffers[id] = audioBuffer
				e.onEvent(wire.LoadSucceededEvent{
					RequestID:         req.RequestID,
					BufferID:          id,
					DurationInSeconds: audioBuffer.Get("duration").Float(),
				})
			}).Call("catch", func(*js.Object) {
				e.onEvent(wire.LoadFailedEvent{RequestID: req.RequestID, Error: wire.MediaDecodeAudioDataUnknownContentType})
			})
		}).Call("catch", func(*js.Object) {
			e.onEvent(wire.LoadFailedEvent{RequestID: req.RequestID, Error: wire.NetworkError})
		})
	}).Call("catch", func(*js.Object) {
		e.onEvent(wire.LoadFailedEvent{RequestID: req.RequestID, Error: wire.NetworkError})
	})
}

// Apply executes one tick's worth of reconciler commands, in order.
func (e *Engine) Apply(commands []reconcile.Command) {
	for _, cmd := range commands {
		e.apply(cmd)
	}
}

func (e *Engine) apply(cmd reconcile.Command) {
	switch c := cmd.(type) {
	case reconcile.StartSound:
		e.startSound(c)
	case reconcile.StopSound:
		e.stop(c.NodeGroupID)
	case reconcile.SetVolume:
		e.setVolume(c.NodeGroupID, c.Volume)
	case reconcile.SetVolumeAt:
		e.setVolumeAt(c.NodeGroupID, c.VolumeTimelines)
	case reconcile.SetLoopConfig:
		e.setLoopConfig(c.NodeGroupID, c.Loop)
	case reconcile.SetPlaybackRate:
		e.setPlaybackRate(c.NodeGroupID, c.PlaybackRate)
	case reconcile.StartOscillator:
		e.startOscillator(c)
	}
}

func (e *Engine) startSound(c reconcile.StartSound) {
	buffer, ok := e.buffers[c.Sound.Source.BufferID]
	if !ok {
		return
	}

	gain := e.ctx.Call("createGain")
	gain.Get("gain").Set("value", c.Sound.Volume)
	applyVolumeTimelines(gain.Get("gain"), e.ctx, c.Sound.VolumeTimelines)

	source := e.ctx.Call("createBufferSource")
	source.Set("buffer", buffer)
	source.Get("playbackRate").Set("value", c.Sound.PlaybackRate)
	if c.Sound.Loop != nil {
		source.Set("loop", true)
		source.Set("loopStart", float64(c.Sound.Loop.LoopStart)/1000)
		source.Set("loopEnd", float64(c.Sound.Loop.LoopEnd)/1000)
	}

	source.Call("connect", gain)
	gain.Call("connect", e.masterGain)
	source.Call("start", 0, float64(c.Sound.StartAt)/1000)

	e.sounds[c.NodeGroupID] = &liveSound{source: source, gain: gain}
}

func (e *Engine) startOscillator(c reconcile.StartOscillator) {
	gain := e.ctx.Call("createGain")
	gain.Get("gain").Set("value", c.Oscillator.Volume)
	applyVolumeTimelines(gain.Get("gain"), e.ctx, c.Oscillator.VolumeTimelines)

	var source *js.Object
	switch c.Oscillator.Type.Kind {
	case audiotree.WhiteNoise, audiotree.PinkNoise, audiotree.BrownNoise:
		source = e.createNoiseSource(c.Oscillator.Type.Kind)
	default:
		osc := e.ctx.Call("createOscillator")
		osc.Set("type", c.Oscillator.Type.Kind.String())
		osc.Get("frequency").Set("value", c.Oscillator.Type.Frequency)
		source = osc
	}

	source.Call("connect", gain)
	gain.Call("connect", e.masterGain)
	source.Call("start")

	e.oscillators[c.NodeGroupID] = &liveOscillator{source: source, gain: gain}
}

// createNoiseSource builds a looping buffer source filled with white
// noise, or a crude running-average filter over it for pink/brown.
// Web Audio has no native noise oscillator type, unlike the other four
// waveforms.
func (e *Engine) createNoiseSource(kind audiotree.OscillatorKind) *js.Object {
	const seconds = 2
	sampleRate := e.ctx.Get("sampleRate").Float()
	frameCount := int(sampleRate * seconds)

	buffer := e.ctx.Call("createBuffer", 1, frameCount, sampleRate)
	data := buffer.Call("getChannelData", 0)

	last := 0.0
	for i := 0; i < frameCount; i++ {
		white := js.Global.Get("Math").Call("random").Float()*2 - 1
		switch kind {
		case audiotree.PinkNoise:
			last = (last + white*0.5) / 1.5
			data.SetIndex(i, last)
		case audiotree.BrownNoise:
			last += white * 0.02
			if last > 1 {
				last = 1
			} else if last < -1 {
				last = -1
			}
			data.SetIndex(i, last)
		default:
			data.SetIndex(i, white)
		}
	}

	source := e.ctx.Call("createBufferSource")
	source.Set("buffer", buffer)
	source.Set("loop", true)
	return source
}

func (e *Engine) stop(id reconcile.NodeGroupID) {
	if live, ok := e.sounds[id]; ok {
		live.source.Call("stop")
		delete(e.sounds, id)
		return
	}
	if live, ok := e.oscillators[id]; ok {
		live.source.Call("stop")
		delete(e.oscillators, id)
	}
}

func (e *Engine) gainParam(id reconcile.NodeGroupID) *js.Object {
	if live, ok := e.sounds[id]; ok {
		return live.gain.Get("gain")
	}
	if live, ok := e.oscillators[id]; ok {
		return live.gain.Get("gain")
	}
	return nil
}

func (e *Engine) setVolume(id reconcile.NodeGroupID, volume float64) {
	if param := e.gainParam(id); param != nil {
		param.Set("value", volume)
	}
}

func (e *Engine) setVolumeAt(id reconcile.NodeGroupID, timelines [][]audiotree.VolumePoint) {
	param := e.gainParam(id)
	if param == nil {
		return
	}
	param.Call("cancelScheduledValues", 0)
	applyVolumeTimelines(param, e.ctx, timelines)
}

func (e *Engine) setLoopConfig(id reconcile.NodeGroupID, loop *audiotree.LoopConfig) {
	live, ok := e.sounds[id]
	if !ok {
		return
	}
	if loop == nil {
		live.source.Set("loop", false)
		return
	}
	live.source.Set("loop", true)
	live.source.Set("loopStart", float64(loop.LoopStart)/1000)
	live.source.Set("loopEnd", float64(loop.LoopEnd)/1000)
}

func (e *Engine) setPlaybackRate(id reconcile.NodeGroupID, rate float64) {
	if live, ok := e.sounds[id]; ok {
		live.source.Get("playbackRate").Set("value", rate)
	}
}

// applyVolumeTimelines schedules each timeline's points in order: the
// first point of each timeline is set directly, later points ramp to it
// linearly, mirroring how the teacher's manager schedules gain envelopes.
func applyVolumeTimelines(param *js.Object, ctx *js.Object, timelines [][]audiotree.VolumePoint) {
	now := ctx.Call("currentTime").Float()
	for _, points := range timelines {
		for i, p := range points {
			at := now + float64(p.Time)/1000
			if i == 0 {
				param.Call("setValueAtTime", p.Volume, at)
			} else {
				param.Call("linearRampToValueAtTime", p.Volume, at)
			}
		}
	}
}

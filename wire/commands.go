// Package wire is the command codec (C4): it serializes the reconciler's
// command list and the load tracker's pending requests into the engine's
// wire format, and decodes the engine's replies. It holds no state of
// its own.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/simukka/declarative-audio/audiotree"
	"github.com/simukka/declarative-audio/reconcile"
)

type volumePointWire struct {
	Time   float64 `json:"time"`
	Volume float64 `json:"volume"`
}

type loopWire struct {
	LoopStart float64 `json:"loopStart"`
	LoopEnd   float64 `json:"loopEnd"`
}

func encodeLoop(loop *audiotree.LoopConfig) *loopWire {
	if loop == nil {
		return nil
	}
	return &loopWire{LoopStart: float64(loop.LoopStart), LoopEnd: float64(loop.LoopEnd)}
}

func encodeTimelines(timelines [][]audiotree.VolumePoint) [][]volumePointWire {
	out := make([][]volumePointWire, len(timelines))
	for i, points := range timelines {
		row := make([]volumePointWire, len(points))
		for j, p := range points {
			row[j] = volumePointWire{Time: float64(p.Time), Volume: p.Volume}
		}
		out[i] = row
	}
	return out
}

// startSoundWire, stopSoundWire, … mirror §6's per-action field sets.
// Kept as distinct typed structs (rather than one struct with omitempty)
// because the schema requires "loop" to serialize as an explicit null,
// not be dropped, when a sound has no loop.
type startSoundWire struct {
	Action          string              `json:"action"`
	NodeGroupID     int                 `json:"nodeGroupId"`
	BufferID        int                 `json:"bufferId"`
	StartTime       int64               `json:"startTime"`
	StartAt         float64             `json:"startAt"`
	Volume          float64             `json:"volume"`
	VolumeTimelines [][]volumePointWire `json:"volumeTimelines"`
	Loop            *loopWire           `json:"loop"`
	PlaybackRate    float64             `json:"playbackRate"`
}

type stopSoundWire struct {
	Action      string `json:"action"`
	NodeGroupID int    `json:"nodeGroupId"`
}

type setVolumeWire struct {
	Action      string  `json:"action"`
	NodeGroupID int     `json:"nodeGroupId"`
	Volume      float64 `json:"volume"`
}

type setVolumeAtWire struct {
	Action      string              `json:"action"`
	NodeGroupID int                 `json:"nodeGroupId"`
	VolumeAt    [][]volumePointWire `json:"volumeAt"`
}

type setLoopConfigWire struct {
	Action      string    `json:"action"`
	NodeGroupID int       `json:"nodeGroupId"`
	Loop        *loopWire `json:"loop"`
}

type setPlaybackRateWire struct {
	Action       string  `json:"action"`
	NodeGroupID  int     `json:"nodeGroupId"`
	PlaybackRate float64 `json:"playbackRate"`
}

type startOscillatorWire struct {
	Action          string              `json:"action"`
	NodeGroupID     int                 `json:"nodeGroupId"`
	OscillatorType  string              `json:"oscillatorType"`
	StartTime       int64               `json:"startTime"`
	Volume          float64             `json:"volume"`
	VolumeTimelines [][]volumePointWire `json:"volumeTimelines"`
	Frequency       float64             `json:"frequency"`
}

// EncodeCommand converts one reconciler command into its wire shape.
// The returned value marshals to the JSON object described in spec §6.
func EncodeCommand(cmd reconcile.Command) (interface{}, error) {
	switch c := cmd.(type) {
	case reconcile.StartSound:
		return startSoundWire{
			Action:          "startSound",
			NodeGroupID:     int(c.NodeGroupID),
			BufferID:        c.Sound.Source.BufferID,
			StartTime:       int64(c.Sound.StartTime),
			StartAt:         float64(c.Sound.StartAt),
			Volume:          c.Sound.Volume,
			VolumeTimelines: encodeTimelines(c.Sound.VolumeTimelines),
			Loop:            encodeLoop(c.Sound.Loop),
			PlaybackRate:    c.Sound.PlaybackRate,
		}, nil

	case reconcile.StopSound:
		return stopSoundWire{Action: "stopSound", NodeGroupID: int(c.NodeGroupID)}, nil

	case reconcile.SetVolume:
		return setVolumeWire{Action: "setVolume", NodeGroupID: int(c.NodeGroupID), Volume: c.Volume}, nil

	case reconcile.SetVolumeAt:
		return setVolumeAtWire{
			Action:      "setVolumeAt",
			NodeGroupID: int(c.NodeGroupID),
			VolumeAt:    encodeTimelines(c.VolumeTimelines),
		}, nil

	case reconcile.SetLoopConfig:
		return setLoopConfigWire{Action: "setLoopConfig", NodeGroupID: int(c.NodeGroupID), Loop: encodeLoop(c.Loop)}, nil

	case reconcile.SetPlaybackRate:
		return setPlaybackRateWire{
			Action:       "setPlaybackRate",
			NodeGroupID:  int(c.NodeGroupID),
			PlaybackRate: c.PlaybackRate,
		}, nil

	case reconcile.StartOscillator:
		return startOscillatorWire{
			Action:          "startOscillator",
			NodeGroupID:     int(c.NodeGroupID),
			OscillatorType:  c.Oscillator.Type.Kind.String(),
			StartTime:       int64(c.Oscillator.StartTime),
			Volume:          c.Oscillator.Volume,
			VolumeTimelines: encodeTimelines(c.Oscillator.VolumeTimelines),
			Frequency:       c.Oscillator.Type.Frequency,
		}, nil

	default:
		return nil, fmt.Errorf("wire: unknown command type %T", cmd)
	}
}

// LoadRequest is one entry of the audioCmds list: a URL the engine
// should fetch and decode, tagged with the request id the tracker
// assigned it.
type LoadRequest struct {
	AudioURL  string `json:"audioUrl"`
	RequestID int    `json:"requestId"`
}

// OutgoingMessage is the full per-tick wire message sent to the engine.
type OutgoingMessage struct {
	Audio     []interface{} `json:"audio"`
	AudioCmds []LoadRequest `json:"audioCmds"`
}

// EncodeMessage builds the per-tick outgoing message from a reconciler
// command list and a batch of newly issued load requests.
func EncodeMessage(commands []reconcile.Command, loads []LoadRequest) (OutgoingMessage, error) {
	audio := make([]interface{}, 0, len(commands))
	for _, cmd := range commands {
		encoded, err := EncodeCommand(cmd)
		if err != nil {
			return OutgoingMessage{}, err
		}
		audio = append(audio, encoded)
	}
	return OutgoingMessage{Audio: audio, AudioCmds: loads}, nil
}

// Marshal is EncodeMessage followed by json.Marshal, for callers that
// just want bytes to hand to the engine.
func Marshal(commands []reconcile.Command, loads []LoadRequest) ([]byte, error) {
	msg, err := EncodeMessage(commands, loads)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

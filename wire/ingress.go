package wire

import (
	"encoding/json"
	"fmt"
)

// LoadErrorKind is the error taxonomy surfaced to a load's callback.
type LoadErrorKind string

const (
	NetworkError                           LoadErrorKind = "NetworkError"
	MediaDecodeAudioDataUnknownContentType LoadErrorKind = "MediaDecodeAudioDataUnknownContentType"
	ExceededMaxSimultaneousLoads           LoadErrorKind = "ExceededMaxSimultaneousLoads"
)

// JSONParseError means an inbound engine message didn't parse, or used a
// "type" tag this codec doesn't recognize. Per §7, this is recorded and
// silently dropped — it is never surfaced to a load callback, since an
// unparseable message carries no request id to correlate against.
type JSONParseError struct {
	Err error
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("wire: could not parse inbound message: %v", e.Err)
}

func (e *JSONParseError) Unwrap() error {
	return e.Err
}

// InboundEvent is the sum type of messages the engine can send back.
// Sealed to this package.
type InboundEvent interface {
	inboundEvent()
}

// LoadFailedEvent reports that a load request failed.
type LoadFailedEvent struct {
	RequestID int
	Error     LoadErrorKind
}

func (LoadFailedEvent) inboundEvent() {}

// LoadSucceededEvent reports that a load request produced a usable buffer.
type LoadSucceededEvent struct {
	RequestID         int
	BufferID          int
	DurationInSeconds float64
}

func (LoadSucceededEvent) inboundEvent() {}

// ContextInitializedEvent reports that the engine's AudioContext is live.
type ContextInitializedEvent struct {
	SamplesPerSecond int
}

func (ContextInitializedEvent) inboundEvent() {}

type inboundEnvelope struct {
	Type              int     `json:"type"`
	RequestID         int     `json:"requestId"`
	Error             string  `json:"error"`
	BufferID          int     `json:"bufferId"`
	DurationInSeconds float64 `json:"durationInSeconds"`
	SamplesPerSecond  int     `json:"samplesPerSecond"`
}

// DecodeInbound parses one engine-to-host message. A non-nil error is
// always a *JSONParseError: the message either didn't parse as JSON or
// carried a "type" this codec doesn't know about. Callers should record
// it and move on rather than treat it as fatal.
func DecodeInbound(data []byte) (InboundEvent, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &JSONParseError{Err: err}
	}

	switch env.Type {
	case 0:
		return LoadFailedEvent{RequestID: env.RequestID, Error: LoadErrorKind(env.Error)}, nil
	case 1:
		return LoadSucceededEvent{
			RequestID:         env.RequestID,
			BufferID:          env.BufferID,
			DurationInSeconds: env.DurationInSeconds,
		}, nil
	case 2:
		return ContextInitializedEvent{SamplesPerSecond: env.SamplesPerSecond}, nil
	default:
		return nil, &JSONParseError{Err: fmt.Errorf("unrecognized message type %d", env.Type)}
	}
}

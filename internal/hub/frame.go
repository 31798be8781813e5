// Package hub implements the line-framed SignalR JSON protocol spoken by the
// Panquiz play hub: JSON records terminated by a single 0x1E record separator.
package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RecordSeparator terminates every frame on the wire.
const RecordSeparator byte = 0x1e

// Hub message targets observed from the live service.
const (
	TargetShowQuestion       = "ShowQuestion"
	TargetShowMedal          = "ShowMedal"
	TargetPlayAgain          = "PlayAgain"
	TargetPlayerDisconnected = "PlayerDisconnected"
	TargetQuizAlreadyStarted = "QuizAlreadyStarted"
	TargetPlayerJoined       = "PlayerJoined"
	TargetAnswerGiven        = "AnswerGivenFromPlayer"
)

// Message is a hub invocation record.
type Message struct {
	Type      int               `json:"type"`
	Target    string            `json:"target,omitempty"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
}

// Handshake is the first frame sent after the socket opens. The server
// acknowledges it with an empty-object frame.
type Handshake struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

// Record is one decoded frame. Ack marks the protocol-level handshake
// acknowledgement `{}`, which carries no Message.
type Record struct {
	Ack     bool
	Message *Message
}

// Encode serializes v and appends the record separator.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, RecordSeparator), nil
}

// Decode splits buf on record separators and parses each segment. Malformed
// segments are reported in errs and skipped; they never fail the whole buffer.
func Decode(buf []byte) (records []Record, errs []error) {
	for _, seg := range bytes.Split(buf, []byte{RecordSeparator}) {
		seg = bytes.TrimSpace(seg)
		if len(seg) == 0 {
			continue
		}
		if bytes.Equal(seg, []byte("{}")) {
			records = append(records, Record{Ack: true})
			continue
		}
		var msg Message
		if err := json.Unmarshal(seg, &msg); err != nil {
			errs = append(errs, fmt.Errorf("frame decode: %w", err))
			continue
		}
		records = append(records, Record{Message: &msg})
	}
	return records, errs
}

// NewInvocation builds a type-1 hub message with JSON-encoded arguments.
func NewInvocation(target string, args ...any) (*Message, error) {
	raw := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return &Message{Type: 1, Target: target, Arguments: raw}, nil
}

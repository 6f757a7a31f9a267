package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/peterkuimelis/cct/internal/log"
	"github.com/peterkuimelis/cct/internal/runner"
	"github.com/peterkuimelis/cct/internal/task"
)

// NetworkParticipant implements runner.Participant over a TCP connection.
type NetworkParticipant struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	id   string
	mu   sync.Mutex // guards enc
}

// NewNetworkParticipant creates a participant for the given connection.
// dec may be a decoder that already consumed the join message; nil creates
// a fresh one.
func NewNetworkParticipant(conn net.Conn, dec *json.Decoder, id string) *NetworkParticipant {
	if dec == nil {
		dec = json.NewDecoder(conn)
	}
	return &NetworkParticipant{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  dec,
		id:   id,
	}
}

// ID returns the participant ID sent with the join message.
func (np *NetworkParticipant) ID() string {
	return np.id
}

// EventViewOf converts a task event for the client.
func EventViewOf(event log.TaskEvent) EventView {
	return EventView{
		Step:    event.Step,
		Round:   event.Round,
		Type:    event.Type.String(),
		Card:    event.Card,
		Score:   event.Score,
		Details: event.Details,
	}
}

// send sends a server message to the client.
func (np *NetworkParticipant) send(msg ServerMessage) error {
	np.mu.Lock()
	defer np.mu.Unlock()
	return np.enc.Encode(msg)
}

// Render implements runner.Participant.
func (np *NetworkParticipant) Render(ctx context.Context, view *task.View) error {
	if err := np.send(ServerMessage{Type: MsgRender, View: view}); err != nil {
		return fmt.Errorf("send render: %w", err)
	}
	return nil
}

// Input implements runner.Participant. Messages that are not inputs are
// skipped.
func (np *NetworkParticipant) Input(ctx context.Context) (task.Input, error) {
	for {
		var msg ClientMessage
		if err := np.dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return task.Input{}, runner.ErrClosed
			}
			return task.Input{}, fmt.Errorf("recv input: %w", err)
		}
		if in, ok := msg.Input(); ok {
			return in, nil
		}
	}
}

// Notify implements runner.Participant.
func (np *NetworkParticipant) Notify(ctx context.Context, event log.TaskEvent) error {
	ev := EventViewOf(event)
	return np.send(ServerMessage{Type: MsgNotify, Event: &ev})
}

// SendTaskOver sends the final summary and all collected records.
func (np *NetworkParticipant) SendTaskOver(records task.Records, result string) error {
	sum := task.Summarize(records)
	return np.send(ServerMessage{Type: MsgTaskOver, Summary: &sum, Records: records, Result: result})
}

package web

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/peterkuimelis/cct/internal/log"
	cctnet "github.com/peterkuimelis/cct/internal/net"
	"github.com/peterkuimelis/cct/internal/runner"
	"github.com/peterkuimelis/cct/internal/task"
)

// wsParticipant implements runner.Participant over a browser WebSocket,
// speaking the same JSON messages as the TCP protocol. Reads happen on one
// goroutine bound to the connection's context, so a cancelled Input does
// not close the socket.
type wsParticipant struct {
	conn   *websocket.Conn
	inputs chan task.Input
	errc   chan error
}

func newWSParticipant(ctx context.Context, conn *websocket.Conn) *wsParticipant {
	p := &wsParticipant{
		conn:   conn,
		inputs: make(chan task.Input),
		errc:   make(chan error, 1),
	}
	go p.readLoop(ctx)
	return p
}

func (p *wsParticipant) readLoop(ctx context.Context) {
	for {
		var msg cctnet.ClientMessage
		if err := wsjson.Read(ctx, p.conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, io.EOF) {
				err = runner.ErrClosed
			}
			p.errc <- err
			return
		}
		in, ok := msg.Input()
		if !ok {
			continue
		}
		select {
		case p.inputs <- in:
		case <-ctx.Done():
			return
		}
	}
}

func (p *wsParticipant) Render(ctx context.Context, view *task.View) error {
	if err := wsjson.Write(ctx, p.conn, cctnet.ServerMessage{Type: cctnet.MsgRender, View: view}); err != nil {
		return fmt.Errorf("send render: %w", err)
	}
	return nil
}

func (p *wsParticipant) Input(ctx context.Context) (task.Input, error) {
	select {
	case in := <-p.inputs:
		return in, nil
	case err := <-p.errc:
		if errors.Is(err, runner.ErrClosed) {
			return task.Input{}, err
		}
		return task.Input{}, fmt.Errorf("recv input: %w", err)
	case <-ctx.Done():
		return task.Input{}, ctx.Err()
	}
}

func (p *wsParticipant) Notify(ctx context.Context, event log.TaskEvent) error {
	ev := cctnet.EventViewOf(event)
	return wsjson.Write(ctx, p.conn, cctnet.ServerMessage{Type: cctnet.MsgNotify, Event: &ev})
}

func (p *wsParticipant) sendTaskOver(ctx context.Context, sessionID string, records task.Records) error {
	sum := task.Summarize(records)
	return wsjson.Write(ctx, p.conn, cctnet.ServerMessage{
		Type:    cctnet.MsgTaskOver,
		Summary: &sum,
		Records: records,
		Result:  fmt.Sprintf("Session %s complete. Final score: %d", sessionID, sum.FinalScore),
	})
}

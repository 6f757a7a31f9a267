package mcp

import (
	"context"

	"github.com/peterkuimelis/cct/internal/log"
	cctnet "github.com/peterkuimelis/cct/internal/net"
	"github.com/peterkuimelis/cct/internal/task"
)

// MCPParticipant implements runner.Participant by publishing screens that
// await input to the session's pending channel and blocking on inputs sent
// by tool calls.
type MCPParticipant struct {
	session *TaskSession
	inputCh chan task.Input
}

// NewMCPParticipant creates a participant for the given session.
func NewMCPParticipant(session *TaskSession) *MCPParticipant {
	return &MCPParticipant{
		session: session,
		inputCh: make(chan task.Input),
	}
}

// Render implements runner.Participant. Every input yields exactly one
// screen that awaits input (or the final screen), which is what a tool call
// waits for.
func (p *MCPParticipant) Render(ctx context.Context, view *task.View) error {
	p.session.setView(view)
	if !view.AwaitingInput && !view.Done {
		return nil
	}
	select {
	case p.session.pendingCh <- view:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Input implements runner.Participant.
func (p *MCPParticipant) Input(ctx context.Context) (task.Input, error) {
	select {
	case in := <-p.inputCh:
		return in, nil
	case <-ctx.Done():
		return task.Input{}, ctx.Err()
	}
}

// Notify implements runner.Participant.
func (p *MCPParticipant) Notify(ctx context.Context, event log.TaskEvent) error {
	p.session.appendEvent(cctnet.EventViewOf(event))
	return nil
}

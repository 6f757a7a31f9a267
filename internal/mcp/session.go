package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/peterkuimelis/cct/internal/log"
	cctnet "github.com/peterkuimelis/cct/internal/net"
	"github.com/peterkuimelis/cct/internal/runner"
	"github.com/peterkuimelis/cct/internal/task"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	SessionID string             `json:"session_id"`
	Events    []cctnet.EventView `json:"events"`
	View      *task.View         `json:"view,omitempty"`
	Done      bool               `json:"done"`
	Summary   *task.Summary      `json:"summary,omitempty"`
	Records   task.Records       `json:"records,omitempty"`
	Result    string             `json:"result,omitempty"`
}

// TaskSession holds the state of a single MCP task session.
type TaskSession struct {
	id          string
	participant *MCPParticipant
	cancel      context.CancelFunc

	pendingCh chan *task.View
	finished  chan struct{}

	mu      sync.Mutex
	view    *task.View
	events  []cctnet.EventView
	records task.Records
	err     error
}

// NewTaskSession loads the task options and starts the runner in the
// background. The first screen is available through waitForPending.
func NewTaskSession(taskFile string, seed int64, schedule func(time.Duration, func())) (*TaskSession, error) {
	opts, err := task.LoadOptions(taskFile)
	if err != nil {
		return nil, fmt.Errorf("load task options: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &TaskSession{
		cancel:    cancel,
		pendingCh: make(chan *task.View, 1),
		finished:  make(chan struct{}),
	}
	sess.participant = NewMCPParticipant(sess)

	r := runner.New(runner.Config{Logger: log.NewMemoryLogger(), Schedule: schedule}, sess.participant)
	sess.id = r.SessionID()
	tk := task.New(task.Config{Seed: seed, Logger: r.Logger()})
	steps := tk.CreateTimeline(r, opts)

	go func() {
		records, err := r.Run(ctx, steps)
		sess.mu.Lock()
		sess.records = records
		sess.err = err
		sess.mu.Unlock()
		close(sess.finished)
	}()

	return sess, nil
}

// Close stops the runner.
func (s *TaskSession) Close() {
	s.cancel()
}

func (s *TaskSession) setView(v *task.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// currentView returns the last rendered screen.
func (s *TaskSession) currentView() *task.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *TaskSession) appendEvent(ev cctnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *TaskSession) drainEvents() []cctnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []cctnet.EventView{}
	}
	return events
}

// submit hands an input to the runner.
func (s *TaskSession) submit(ctx context.Context, in task.Input) error {
	select {
	case s.participant.inputCh <- in:
		return nil
	case <-s.finished:
		return fmt.Errorf("task is no longer running")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitForPending blocks until the runner shows a screen that awaits input or
// the task finishes, then builds a ToolResponse with accumulated events.
func (s *TaskSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var view *task.View
	select {
	case view = <-s.pendingCh:
	case <-s.finished:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if view == nil || view.Done {
		select {
		case <-s.finished:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.response(view), nil
}

// response builds a ToolResponse for view, adding the results once the task
// has finished.
func (s *TaskSession) response(view *task.View) *ToolResponse {
	resp := &ToolResponse{
		SessionID: s.id,
		Events:    s.drainEvents(),
		View:      view,
	}

	select {
	case <-s.finished:
	default:
		return resp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sum := task.Summarize(s.records)
	resp.Done = true
	resp.Summary = &sum
	resp.Records = s.records
	if s.err != nil {
		resp.Result = fmt.Sprintf("error: %v", s.err)
	} else {
		resp.Result = fmt.Sprintf("Task complete. Final score: %d over %d rounds", sum.FinalScore, sum.Rounds)
	}
	return resp
}

func (s *TaskSession) isDone() bool {
	select {
	case <-s.finished:
		return true
	default:
		return false
	}
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}

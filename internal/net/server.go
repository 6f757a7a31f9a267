package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/peterkuimelis/cct/internal/log"
	"github.com/peterkuimelis/cct/internal/runner"
	"github.com/peterkuimelis/cct/internal/task"
)

// Server hosts a task session for one TCP participant.
type Server struct {
	TaskFile string
	Port     string
	Seed     int64     // RNG seed (0 for random)
	Out      io.Writer // event log output; os.Stdout when nil

	// Schedule overrides the runner's timer, for tests.
	Schedule func(d time.Duration, fire func())
}

// Run starts the server, waits for a participant to join, then runs the task.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Fprintf(s.out(), "Waiting for participant on port %s...\n", s.Port)

	// Accept exactly one connection
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Fprintf(s.out(), "Participant connected from %s\n", conn.RemoteAddr())

	_, err = s.Session(ctx, conn)
	return err
}

// Session runs one task over an accepted connection and returns the
// collected records.
func (s *Server) Session(ctx context.Context, conn net.Conn) (task.Records, error) {
	opts, err := task.LoadOptions(s.TaskFile)
	if err != nil {
		return nil, fmt.Errorf("load task options: %w", err)
	}

	// Read the participant's join message
	dec := json.NewDecoder(conn)
	var joinMsg ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		return nil, fmt.Errorf("read join message: %w", err)
	}
	if joinMsg.Type != MsgJoin {
		return nil, fmt.Errorf("expected join message, got %q", joinMsg.Type)
	}

	p := NewNetworkParticipant(conn, dec, joinMsg.Participant)
	logger := log.NewTextLogger(s.out())
	r := runner.New(runner.Config{Logger: logger, Schedule: s.Schedule}, p)
	tk := task.New(task.Config{Seed: s.Seed, Logger: r.Logger()})

	fmt.Fprintf(s.out(), "Session %s (participant %q): %d rounds\n", r.SessionID(), p.ID(), len(opts.Rounds))

	records, err := r.Run(ctx, tk.CreateTimeline(r, opts))
	if err != nil {
		return records, fmt.Errorf("task error: %w", err)
	}

	sum := task.Summarize(records)
	result := fmt.Sprintf("Task complete. Final score: %d over %d rounds", sum.FinalScore, sum.Rounds)
	if err := p.SendTaskOver(records, result); err != nil {
		return records, fmt.Errorf("send task_over: %w", err)
	}
	fmt.Fprintln(s.out(), result)
	return records, nil
}

func (s *Server) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

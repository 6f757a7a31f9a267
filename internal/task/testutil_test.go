package task

import (
	"testing"
	"time"

	"github.com/peterkuimelis/cct/internal/log"
)

// fixedSource returns its values in order, repeating the last one.
type fixedSource struct {
	values []int
	pos    int
}

func (s *fixedSource) Intn(n int) int {
	v := s.values[s.pos]
	if s.pos < len(s.values)-1 {
		s.pos++
	}
	return v % n
}

func alwaysZero() *fixedSource {
	return &fixedSource{values: []int{0}}
}

// pendingTimer is a delayed callback held by fakeEngine until fired.
type pendingTimer struct {
	delay time.Duration
	fn    func()
}

// fakeEngine is a task.Engine with a manual clock and manual timers.
type fakeEngine struct {
	now      time.Time
	current  *StepState
	data     Records
	timers   []pendingTimer
	finished int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		now:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		current: &StepState{Data: Record{}},
	}
}

func (e *fakeEngine) CurrentStep() *StepState { return e.current }

func (e *fakeEngine) FinishStep() {
	e.finished++
	if e.current != nil {
		e.data = append(e.data, e.current.Data)
	}
	e.current = &StepState{Index: e.current.Index + 1, Data: Record{}}
}

func (e *fakeEngine) Data() Records { return e.data }

func (e *fakeEngine) After(d time.Duration, fn func()) {
	e.timers = append(e.timers, pendingTimer{delay: d, fn: fn})
}

func (e *fakeEngine) Now() time.Time { return e.now }

func (e *fakeEngine) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

// fireTimers runs all pending timers in order and returns how many fired.
func (e *fakeEngine) fireTimers() int {
	timers := e.timers
	e.timers = nil
	for _, tm := range timers {
		e.advance(tm.delay)
		tm.fn()
	}
	return len(timers)
}

// fakeSurface records surface updates and keeps bound handlers by target.
type fakeSurface struct {
	absent   bool // simulate a screen without score/message/stop elements
	handlers map[string]func()
	faces    map[int]Face
	labels   map[int]string
	score    int
	messages []Message
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		handlers: make(map[string]func()),
		faces:    make(map[int]Face),
		labels:   make(map[int]string),
	}
}

func (s *fakeSurface) Bind(target string, fn func()) bool {
	if s.absent && target == StopTarget {
		return false
	}
	s.handlers[target] = fn
	return true
}

func (s *fakeSurface) Reveal(card int, face Face, label string) bool {
	s.faces[card] = face
	s.labels[card] = label
	return true
}

func (s *fakeSurface) SetRoundScore(score int) bool {
	if s.absent {
		return false
	}
	s.score = score
	return true
}

func (s *fakeSurface) SetMessage(msg Message) bool {
	if s.absent {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

func (s *fakeSurface) click(t *testing.T, target string) {
	t.Helper()
	fn, ok := s.handlers[target]
	if !ok {
		t.Fatalf("no handler bound to %q", target)
	}
	fn()
}

func (s *fakeSurface) flip(t *testing.T, card int) {
	t.Helper()
	s.click(t, CardTarget(card))
}

// startRound builds a task with the given source and sets up one round.
func startRound(t *testing.T, src Source, cfg RoundConfig, numCards int) (*Task, *fakeEngine, *fakeSurface, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	tk := New(Config{Source: src, Logger: logger})
	eng := newFakeEngine()
	s := newFakeSurface()
	tk.SetupRound(eng, s, cfg, 1, DefaultCols, numCards)
	return tk, eng, s, logger
}

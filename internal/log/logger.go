package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging task events.
type EventLogger interface {
	Log(event TaskEvent)
	Events() []TaskEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []TaskEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event TaskEvent) {
	l.record(event)
}

func (l *MemoryLogger) record(event TaskEvent) TaskEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
	return event
}

func (l *MemoryLogger) Events() []TaskEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TaskEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []TaskEvent {
	var result []TaskEvent
	for _, e := range l.Events() {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() TaskEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return TaskEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event TaskEvent) {
	event = l.MemoryLogger.record(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e TaskEvent) string {
	step := "  "
	if e.Step >= 0 {
		step = fmt.Sprintf("%-2d", e.Step+1)
	}
	round := "   "
	if e.Round > 0 {
		round = fmt.Sprintf("R%-2d", e.Round)
	}
	kind := e.Type.String()
	// Pad type to 14 chars for alignment
	for len(kind) < 14 {
		kind += " "
	}
	return fmt.Sprintf("S%s %s %s| %s", step, round, kind, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []TaskEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewTaskStartEvent(session string, steps, rounds int) TaskEvent {
	return TaskEvent{
		Step:    -1,
		Card:    -1,
		Type:    EventTaskStart,
		Details: fmt.Sprintf("session %s: %d steps, %d rounds", session, steps, rounds),
	}
}

func NewStepStartEvent(step int, kind, name string) TaskEvent {
	return TaskEvent{
		Step:    step,
		Card:    -1,
		Type:    EventStepStart,
		Details: fmt.Sprintf("%s step %q", kind, name),
	}
}

func NewStepFinishEvent(step int, kind string, rt int64) TaskEvent {
	return TaskEvent{
		Step:    step,
		Card:    -1,
		Type:    EventStepFinish,
		Details: fmt.Sprintf("%s step finished after %d ms", kind, rt),
	}
}

func NewRoundStartEvent(round, numCards, lossCards int) TaskEvent {
	return TaskEvent{
		Step:    -1,
		Round:   round,
		Card:    -1,
		Type:    EventRoundStart,
		Details: fmt.Sprintf("Round %d starts: %d cards, %d loss", round, numCards, lossCards),
	}
}

func NewCardGainEvent(round, card, gain, score int) TaskEvent {
	return TaskEvent{
		Step:    -1,
		Round:   round,
		Card:    card,
		Score:   score,
		Type:    EventCardGain,
		Details: fmt.Sprintf("card %d: +%d (round score %d)", card+1, gain, score),
	}
}

func NewCardLossEvent(round, card, loss, score int) TaskEvent {
	return TaskEvent{
		Step:    -1,
		Round:   round,
		Card:    card,
		Score:   score,
		Type:    EventCardLoss,
		Details: fmt.Sprintf("card %d: -%d loss card (round score %d)", card+1, loss, score),
	}
}

func NewAllGainsFoundEvent(round, score int) TaskEvent {
	return TaskEvent{
		Step:    -1,
		Round:   round,
		Card:    -1,
		Score:   score,
		Type:    EventAllGainsFound,
		Details: fmt.Sprintf("all gain cards found (round score %d)", score),
	}
}

func NewRoundStopEvent(round, cards, score int) TaskEvent {
	return TaskEvent{
		Step:    -1,
		Round:   round,
		Card:    -1,
		Score:   score,
		Type:    EventRoundStop,
		Details: fmt.Sprintf("stopped after %d cards (round score %d)", cards, score),
	}
}

func NewRoundEndEvent(round, roundScore, total int, voluntary bool) TaskEvent {
	how := "loss"
	if voluntary {
		how = "voluntary"
	}
	return TaskEvent{
		Step:    -1,
		Round:   round,
		Card:    -1,
		Score:   total,
		Type:    EventRoundEnd,
		Details: fmt.Sprintf("Round %d ends (%s): %+d → total %d", round, how, roundScore, total),
	}
}

func NewTaskEndEvent(rounds, total int) TaskEvent {
	return TaskEvent{
		Step:    -1,
		Card:    -1,
		Score:   total,
		Type:    EventTaskEnd,
		Details: fmt.Sprintf("task complete: %d rounds, final score %d", rounds, total),
	}
}

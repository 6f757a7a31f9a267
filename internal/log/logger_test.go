package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewRoundStartEvent(1, 16, 1))
	l.Log(NewCardGainEvent(1, 3, 10, 10))
	l.Log(NewCardLossEvent(1, 0, 250, -240))

	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d: expected seq %d, got %d", i, i+1, e.Seq)
		}
	}
	if got := l.EventsOfType(EventCardGain); len(got) != 1 || got[0].Card != 3 {
		t.Errorf("unexpected gain events: %+v", got)
	}
	if l.LastEvent().Type != EventCardLoss {
		t.Errorf("expected last event CardLoss, got %s", l.LastEvent().Type)
	}
}

func TestTextLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewRoundEndEvent(2, 150, 300, true))

	out := buf.String()
	if !strings.Contains(out, "R2") || !strings.Contains(out, "voluntary") {
		t.Errorf("unexpected text output: %q", out)
	}
	if len(l.Events()) != 1 {
		t.Errorf("text logger should also keep events in memory")
	}
}

func TestEventTypeString(t *testing.T) {
	if EventAllGainsFound.String() != "AllGainsFound" {
		t.Errorf("got %q", EventAllGainsFound.String())
	}
	if EventType(99).String() != "Unknown" {
		t.Errorf("got %q", EventType(99).String())
	}
}

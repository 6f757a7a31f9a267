package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/peterkuimelis/cct/internal/log"
	"github.com/peterkuimelis/cct/internal/task"
)

// ScriptedParticipant is a Participant that follows a predefined script of
// inputs. Each input is released only after the runner renders a screen that
// awaits input, the way a person waits for the outcome before clicking on.
type ScriptedParticipant struct {
	t      *testing.T
	inputs []task.Input
	pos    int
	ready  chan struct{}

	mu     sync.Mutex
	views  []*task.View
	events []log.TaskEvent
}

func NewScriptedParticipant(t *testing.T) *ScriptedParticipant {
	return &ScriptedParticipant{t: t, ready: make(chan struct{}, 1)}
}

func (sp *ScriptedParticipant) Choose(index int) *ScriptedParticipant {
	sp.inputs = append(sp.inputs, task.Choose(index))
	return sp
}

func (sp *ScriptedParticipant) Flip(cards ...int) *ScriptedParticipant {
	for _, c := range cards {
		sp.inputs = append(sp.inputs, task.Click(task.CardTarget(c)))
	}
	return sp
}

func (sp *ScriptedParticipant) Stop() *ScriptedParticipant {
	sp.inputs = append(sp.inputs, task.Click(task.StopTarget))
	return sp
}

func (sp *ScriptedParticipant) Click(target string) *ScriptedParticipant {
	sp.inputs = append(sp.inputs, task.Click(target))
	return sp
}

func (sp *ScriptedParticipant) Render(ctx context.Context, view *task.View) error {
	sp.mu.Lock()
	sp.views = append(sp.views, view)
	sp.mu.Unlock()
	if view.AwaitingInput {
		select {
		case sp.ready <- struct{}{}:
		default:
		}
	}
	return nil
}

func (sp *ScriptedParticipant) Input(ctx context.Context) (task.Input, error) {
	if sp.pos >= len(sp.inputs) {
		<-ctx.Done()
		return task.Input{}, ctx.Err()
	}
	select {
	case <-sp.ready:
	case <-ctx.Done():
		return task.Input{}, ctx.Err()
	}
	in := sp.inputs[sp.pos]
	sp.pos++
	return in, nil
}

func (sp *ScriptedParticipant) Notify(ctx context.Context, event log.TaskEvent) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.events = append(sp.events, event)
	return nil
}

func (sp *ScriptedParticipant) Views() []*task.View {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return append([]*task.View(nil), sp.views...)
}

// viewsNamed returns every rendered view of steps with the given name.
func (sp *ScriptedParticipant) viewsNamed(name string) []*task.View {
	var out []*task.View
	for _, v := range sp.Views() {
		if v.Name == name {
			out = append(out, v)
		}
	}
	return out
}

// zeroSource always places the loss card at index 0.
type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

// immediate fires timers right away so tests skip the display delays.
func immediate(d time.Duration, fire func()) {
	go fire()
}

// runTaskToCompletion runs a task timeline and returns the records and
// logger for inspection.
func runTaskToCompletion(t *testing.T, opts task.Options, sp *ScriptedParticipant) (task.Records, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	r := New(Config{SessionID: "test-session", Logger: logger, Schedule: immediate}, sp)
	tk := task.New(task.Config{Source: zeroSource{}, Logger: r.Logger()})
	steps := tk.CreateTimeline(r, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	records, err := r.Run(ctx, steps)
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("Run error: %v", err)
	}
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	return records, logger
}

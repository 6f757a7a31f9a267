package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/peterkuimelis/cct/internal/log"
	"github.com/peterkuimelis/cct/internal/task"
)

// Participant is the interface that every participant surface implements
// (terminal over TCP, browser over WebSocket, MCP tools, scripted tests).
type Participant interface {
	// Render draws the current screen. It is called at every step start and
	// after every processed input or timer.
	Render(ctx context.Context, view *task.View) error

	// Input blocks until the participant produces the next input.
	Input(ctx context.Context) (task.Input, error)

	// Notify sends a task event notification (no response needed).
	Notify(ctx context.Context, event log.TaskEvent) error
}

// Config holds configuration for creating a runner.
type Config struct {
	SessionID string // generated when empty
	Logger    log.EventLogger
	Now       func() time.Time

	// Schedule arms a fire-once timer. Defaults to time.AfterFunc; tests
	// replace it to skip the real delay.
	Schedule func(d time.Duration, fire func())
}

// Runner shows timeline steps one at a time to a single participant. All
// task state is mutated on the goroutine that calls Run.
type Runner struct {
	id          string
	participant Participant
	logger      *notifyingLogger
	now         func() time.Time
	schedule    func(d time.Duration, fire func())

	ctx     context.Context
	started time.Time
	timers  chan func()
	pending int
	err     error

	current  *task.StepState
	view     *task.View
	page     int
	handlers map[string]func()
	finished bool

	data task.Records
}

// New creates a runner for the given participant.
func New(cfg Config, p Participant) *Runner {
	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	inner := cfg.Logger
	if inner == nil {
		inner = log.NewMemoryLogger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	schedule := cfg.Schedule
	if schedule == nil {
		schedule = func(d time.Duration, fire func()) { time.AfterFunc(d, fire) }
	}
	r := &Runner{
		id:          id,
		participant: p,
		now:         now,
		schedule:    schedule,
		ctx:         context.Background(),
		timers:      make(chan func()),
	}
	r.logger = &notifyingLogger{inner: inner, r: r}
	return r
}

// SessionID returns the ID stamped on every record of this run.
func (r *Runner) SessionID() string {
	return r.id
}

// Logger returns the event logger the task should use. Events are recorded
// and forwarded to the participant.
func (r *Runner) Logger() log.EventLogger {
	return r.logger
}

// Run shows every step in order and returns the collected records.
func (r *Runner) Run(ctx context.Context, steps []*task.Step) (task.Records, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.ctx = ctx
	r.started = r.now()

	inputs := make(chan task.Input)
	inputErr := make(chan error, 1)
	go func() {
		for {
			in, err := r.participant.Input(ctx)
			if err != nil {
				inputErr <- err
				return
			}
			select {
			case inputs <- in:
			case <-ctx.Done():
				return
			}
		}
	}()

	rounds := 0
	for _, s := range steps {
		if s.Name == "card_game" {
			rounds++
		}
	}
	r.logger.Log(log.NewTaskStartEvent(r.id, len(steps), rounds))

	for i, step := range steps {
		r.begin(i, step)
		if err := r.render(); err != nil {
			return r.data, err
		}
		if step.OnLoad != nil {
			step.OnLoad(r)
		}

		for !r.finished {
			if r.err != nil {
				return r.data, r.err
			}
			select {
			case in := <-inputs:
				r.dispatch(in)
			case fire := <-r.timers:
				r.pending--
				fire()
			case err := <-inputErr:
				return r.data, fmt.Errorf("participant input: %w", err)
			case <-ctx.Done():
				return r.data, ctx.Err()
			}
			if r.finished {
				break
			}
			if err := r.render(); err != nil {
				return r.data, err
			}
		}
		r.commit()
	}

	sum := task.Summarize(r.data)
	r.logger.Log(log.NewTaskEndEvent(sum.Rounds, sum.FinalScore))
	r.current = nil
	r.view = &task.View{Step: len(steps), Name: "done", Title: "Done", Done: true}
	if err := r.render(); err != nil {
		return r.data, err
	}
	return r.data, r.err
}

// begin makes step the current step and computes its screen.
func (r *Runner) begin(index int, step *task.Step) {
	r.current = &task.StepState{Index: index, Step: step, Start: r.now(), Data: task.Record{}}
	r.page = 0
	r.handlers = make(map[string]func())
	r.finished = false
	r.view = r.screen()
	r.logger.Log(log.NewStepStartEvent(index, string(step.Type), step.Name))
}

// screen builds the view for the current step and page.
func (r *Runner) screen() *task.View {
	step := r.current.Step
	var v *task.View
	switch {
	case len(step.Pages) > 0:
		v = step.Pages[r.page].Clone()
		v.Page = r.page + 1
		v.Pages = len(step.Pages)
	case step.Render != nil:
		v = step.Render()
	default:
		v = &task.View{}
	}
	v.Step = r.current.Index
	v.Type = step.Type
	v.Name = step.Name
	if step.Choices.Kind == task.ChoiceButtons {
		v.Choices = append([]string(nil), step.Choices.Labels...)
	}
	return v
}

func (r *Runner) render() error {
	r.view.AwaitingInput = r.pending == 0 && !r.view.Done
	if err := r.participant.Render(r.ctx, r.view.Clone()); err != nil {
		return fmt.Errorf("render step %d: %w", r.view.Step, err)
	}
	return nil
}

func (r *Runner) dispatch(in task.Input) {
	switch in.Kind {
	case task.InputClick:
		if fn, ok := r.handlers[in.Target]; ok {
			fn()
		}
	case task.InputChoice:
		step := r.current.Step
		if !step.Choices.Accepts(in.Index) {
			return
		}
		if len(step.Pages) > 0 && r.page < len(step.Pages)-1 {
			r.page++
			r.view = r.screen()
			return
		}
		r.current.Data["response"] = in.Index
		r.FinishStep()
	}
}

// commit stamps the current step's record and appends it to the store.
func (r *Runner) commit() {
	st := r.current
	rec := task.Record{}
	for k, v := range st.Data {
		rec[k] = v
	}
	now := r.now()
	if _, ok := rec["rt"]; !ok {
		rec["rt"] = now.Sub(st.Start).Milliseconds()
	}
	rec["trial_index"] = st.Index
	rec["trial_type"] = string(st.Step.Type)
	rec["step"] = st.Step.Name
	rec["session_id"] = r.id
	rec["time_elapsed"] = now.Sub(r.started).Milliseconds()
	r.data = append(r.data, rec)
	r.logger.Log(log.NewStepFinishEvent(st.Index, string(st.Step.Type), now.Sub(st.Start).Milliseconds()))
}

// --- task.Engine ---

// CurrentStep implements task.Engine.
func (r *Runner) CurrentStep() *task.StepState {
	return r.current
}

// FinishStep implements task.Engine.
func (r *Runner) FinishStep() {
	r.finished = true
}

// Data implements task.Engine.
func (r *Runner) Data() task.Records {
	return r.data
}

// After implements task.Engine. The callback runs on the Run goroutine.
func (r *Runner) After(d time.Duration, fn func()) {
	r.pending++
	ctx := r.ctx
	r.schedule(d, func() {
		select {
		case r.timers <- fn:
		case <-ctx.Done():
		}
	})
}

// Now implements task.Engine.
func (r *Runner) Now() time.Time {
	return r.now()
}

// --- task.Surface ---

// Bind implements task.Surface.
func (r *Runner) Bind(target string, fn func()) bool {
	if !r.hasTarget(target) {
		return false
	}
	r.handlers[target] = fn
	return true
}

func (r *Runner) hasTarget(target string) bool {
	if r.view == nil {
		return false
	}
	if r.view.HasControl(target) {
		return true
	}
	if r.view.Grid != nil {
		for _, c := range r.view.Grid.Cards {
			if c.ID == target {
				return true
			}
		}
	}
	return false
}

// Reveal implements task.Surface.
func (r *Runner) Reveal(card int, face task.Face, label string) bool {
	if r.view == nil || r.view.Grid == nil || card < 0 || card >= len(r.view.Grid.Cards) {
		return false
	}
	r.view.Grid.Cards[card].Face = face
	r.view.Grid.Cards[card].Label = label
	return true
}

// SetRoundScore implements task.Surface.
func (r *Runner) SetRoundScore(score int) bool {
	if r.view == nil || r.view.Scoreboard == nil {
		return false
	}
	r.view.Scoreboard.RoundScore = score
	return true
}

// SetMessage implements task.Surface.
func (r *Runner) SetMessage(msg task.Message) bool {
	if r.view == nil || r.view.Message == nil {
		return false
	}
	*r.view.Message = msg
	return true
}

// notifyingLogger records events and forwards them to the participant.
type notifyingLogger struct {
	inner log.EventLogger
	r     *Runner
}

func (l *notifyingLogger) Log(event log.TaskEvent) {
	l.inner.Log(event)
	if err := l.r.participant.Notify(l.r.ctx, event); err != nil && l.r.err == nil {
		l.r.err = fmt.Errorf("notify: %w", err)
	}
}

func (l *notifyingLogger) Events() []log.TaskEvent {
	return l.inner.Events()
}

// ErrClosed is returned by participants whose connection has gone away.
var ErrClosed = errors.New("participant closed")

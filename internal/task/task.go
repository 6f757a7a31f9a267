package task

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/peterkuimelis/cct/internal/log"
)

// Config holds configuration for creating a new task.
type Config struct {
	Source Source // loss-card placement; overrides Seed
	Seed   int64  // RNG seed (0 for random)
	Logger log.EventLogger
}

// Task owns the game state of one task invocation and builds its timeline.
type Task struct {
	state  GameState
	active *RoundContext
	src    Source
	logger log.EventLogger
}

// New creates a task from the given config.
func New(cfg Config) *Task {
	src := cfg.Source
	if src == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		src = rand.New(rand.NewSource(seed))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	return &Task{src: src, logger: logger}
}

// State returns a snapshot of the game state.
func (t *Task) State() GameState {
	return t.state
}

// Reset clears the game state.
func (t *Task) Reset() {
	t.state.Reset()
	t.active = nil
}

// CreateTimeline resets the game state and returns the ordered steps.
func (t *Task) CreateTimeline(eng Engine, opts Options) []*Step {
	t.Reset()

	var steps []*Step
	if opts.ShowInstructions {
		steps = append(steps, t.Instructions())
	}
	for i, rc := range opts.Rounds {
		round := i + 1
		steps = append(steps, t.RoundInfo(round, len(opts.Rounds), rc))
		steps = append(steps, t.CardGame(eng, round, rc, opts.NumCards, opts.Cols))
	}
	if opts.ShowResults {
		steps = append(steps, t.Results(eng))
	}
	return steps
}

// --- Step builders ---

// Instructions returns the two static instruction pages.
func (t *Task) Instructions() *Step {
	return &Step{
		Type: StepInstructions,
		Name: "instructions",
		Pages: []*View{
			{
				Title: "Columbia Card Task",
				Paragraphs: []string{
					"Select cards to earn points. Most cards give you points, but some lose points and end the round.",
					"You can stop anytime to keep your points, or keep selecting for more.",
				},
			},
			{
				Title:      "Strategy",
				Paragraphs: []string{"Before each round, you'll see:", "Use this info to decide your risk!"},
				Bullets:    []string{"Number of loss cards", "Points per gain card", "Loss penalty"},
			},
		},
		Choices: Buttons("Next"),
	}
}

// RoundInfo returns the screen shown before a round.
func (t *Task) RoundInfo(round, totalRounds int, rc RoundConfig) *Step {
	return &Step{
		Type: StepButton,
		Name: "round_info",
		Render: func() *View {
			return &View{
				Title: fmt.Sprintf("Round %d of %d", round, totalRounds),
				Facts: []Fact{
					{Label: "Loss cards", Value: fmt.Sprint(rc.LossCards), Tone: ToneLoss},
					{Label: "Loss penalty", Value: fmt.Sprintf("-%d", rc.LossAmount), Tone: ToneLoss},
					{Label: "Gain per card", Value: fmt.Sprintf("+%d", rc.GainAmount), Tone: ToneGain},
					{Label: "Total score", Value: fmt.Sprint(t.state.TotalScore)},
				},
			}
		},
		Choices: Buttons("Start"),
	}
}

// CardGame returns the interactive card grid of one round.
func (t *Task) CardGame(eng Engine, round int, rc RoundConfig, numCards, cols int) *Step {
	return &Step{
		Type: StepKeyboard,
		Name: "card_game",
		Render: func() *View {
			cards := make([]CardView, numCards)
			for i := range cards {
				cards[i] = CardView{Index: i, ID: CardTarget(i), Face: FaceDown}
			}
			return &View{
				Title:      fmt.Sprintf("Round %d", round),
				Scoreboard: &Scoreboard{Round: round, Total: t.state.TotalScore},
				Grid:       &Grid{Cols: cols, Cards: cards},
				Controls:   []Control{{ID: StopTarget, Label: "Stop and Keep Points"}},
				Message:    &Message{},
			}
		},
		Choices: NoChoices,
		OnLoad: func(s Surface) {
			t.SetupRound(eng, s, rc, round, cols, numCards)
		},
	}
}

// Results returns the summary screen.
func (t *Task) Results(eng Engine) *Step {
	return &Step{
		Type: StepButton,
		Name: "results",
		Render: func() *View {
			sum := Summarize(eng.Data())
			return &View{
				Title: "Task Complete!",
				Facts: []Fact{
					{Label: "Final Score", Value: fmt.Sprint(sum.FinalScore)},
					{Label: "Average cards selected", Value: fmt.Sprintf("%.1f", sum.AverageCards)},
				},
			}
		},
		Choices: Buttons("Continue"),
	}
}

// --- Round wiring ---

// SetupRound places the loss cards, starts a round, and binds the card and
// stop handlers on the surface.
func (t *Task) SetupRound(eng Engine, s Surface, cfg RoundConfig, round, cols, numCards int) *RoundContext {
	rc := &RoundContext{
		Number:   round,
		Config:   cfg,
		NumCards: numCards,
		Cols:     cols,
		Losses:   LossPositions(t.src, numCards, cfg.LossCards),
	}
	t.state.StartRound(numCards, eng.Now())
	t.active = rc
	t.logger.Log(log.NewRoundStartEvent(round, numCards, cfg.LossCards))

	for i := 0; i < numCards; i++ {
		card := i
		s.Bind(CardTarget(card), func() { t.Flip(eng, s, rc, card) })
	}
	s.Bind(StopTarget, func() { t.Stop(eng, s, rc) })
	return rc
}

// Flip handles a click on a card of the round described by rc.
func (t *Task) Flip(eng Engine, s Surface, rc *RoundContext, card int) {
	rd := t.state.Round
	if rd == nil || t.active != rc {
		return
	}
	t.apply(eng, s, rc, rd, rd.Flip(rc, card, eng.Now()))
}

// Stop handles a click on the stop control of the round described by rc.
func (t *Task) Stop(eng Engine, s Surface, rc *RoundContext) {
	rd := t.state.Round
	if rd == nil || t.active != rc {
		return
	}
	t.apply(eng, s, rc, rd, rd.Stop())
}

func (t *Task) apply(eng Engine, s Surface, rc *RoundContext, rd *RoundData, out Outcome) {
	switch out.Kind {
	case OutcomeNone:
		return
	case OutcomeLoss:
		s.Reveal(out.Card, FaceLoss, out.Label)
		t.logger.Log(log.NewCardLossEvent(rc.Number, out.Card, rc.Config.LossAmount, rd.Score))
	case OutcomeGain:
		s.Reveal(out.Card, FaceGain, out.Label)
		s.SetRoundScore(rd.Score)
		t.logger.Log(log.NewCardGainEvent(rc.Number, out.Card, rc.Config.GainAmount, rd.Score))
		if out.Ended {
			t.logger.Log(log.NewAllGainsFoundEvent(rc.Number, rd.Score))
		}
	case OutcomeStop:
		t.logger.Log(log.NewRoundStopEvent(rc.Number, rd.Cards, rd.Score))
	}
	if out.Message != nil {
		s.SetMessage(*out.Message)
	}
	if out.Ended {
		voluntary := out.Voluntary
		eng.After(out.Delay, func() { t.EndRound(eng, rc, voluntary) })
	}
}

// EndRound commits the active round, attaches its record to the current
// step, and finishes the step. Without an active round it does nothing.
func (t *Task) EndRound(eng Engine, rc *RoundContext, voluntary bool) {
	rd, ok := t.state.Commit()
	if !ok {
		return
	}
	t.active = nil

	rec := RoundResult{
		Round:         rc.Number,
		Config:        rc.Config,
		CardsSelected: rd.Cards,
		RoundScore:    rd.Score,
		TotalScore:    t.state.TotalScore,
		VoluntaryStop: voluntary,
		Selections:    rd.Selections,
		RT:            rd.Elapsed(eng.Now()),
	}.Record()
	if st := eng.CurrentStep(); st != nil {
		st.Data = rec
	}
	t.logger.Log(log.NewRoundEndEvent(rc.Number, rd.Score, t.state.TotalScore, voluntary))

	eng.FinishStep()
}

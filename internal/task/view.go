package task

import "fmt"

// StepType names the kind of renderer a step needs.
type StepType string

const (
	StepInstructions StepType = "instructions"
	StepButton       StepType = "html-button-response"
	StepKeyboard     StepType = "html-keyboard-response"
)

// Face is the visible side of a card.
type Face string

const (
	FaceDown Face = "back"
	FaceGain Face = "gain"
	FaceLoss Face = "loss"
)

// Tone hints how a UI should color a value or message.
type Tone string

const (
	ToneNone Tone = ""
	ToneGain Tone = "gain"
	ToneLoss Tone = "loss"
	ToneInfo Tone = "info"
)

// StopTarget is the element ID of the stop control on a card grid.
const StopTarget = "stop-btn"

// CardTarget returns the element ID of the card at index i.
func CardTarget(i int) string {
	return fmt.Sprintf("card-%d", i)
}

// CardView is one cell of the grid. Label is empty while the card is face down.
type CardView struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Face  Face   `json:"face"`
	Label string `json:"label,omitempty"`
}

// Grid is the card layout of a card-game step.
type Grid struct {
	Cols  int        `json:"cols"`
	Cards []CardView `json:"cards"`
}

// Fact is a labeled value shown on an info screen.
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone,omitempty"`
}

// Control is a clickable element that is not a card.
type Control struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Scoreboard is the score header of a card-game step.
type Scoreboard struct {
	Round      int `json:"round"`
	RoundScore int `json:"round_score"`
	Total      int `json:"total"`
}

// Message is a status line shown under the grid.
type Message struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone,omitempty"`
}

// View is everything a participant surface needs to draw one screen.
type View struct {
	Step  int      `json:"step"`
	Type  StepType `json:"type"`
	Name  string   `json:"name"`
	Title string   `json:"title,omitempty"`

	Paragraphs []string `json:"paragraphs,omitempty"`
	Bullets    []string `json:"bullets,omitempty"`
	Facts      []Fact   `json:"facts,omitempty"`

	// Multi-page steps (instructions)
	Page  int `json:"page,omitempty"`
	Pages int `json:"pages,omitempty"`

	Scoreboard *Scoreboard `json:"scoreboard,omitempty"`
	Grid       *Grid       `json:"grid,omitempty"`
	Controls   []Control   `json:"controls,omitempty"`
	Message    *Message    `json:"message,omitempty"`

	Choices       []string `json:"choices,omitempty"`
	AwaitingInput bool     `json:"awaiting_input"`
	Done          bool     `json:"done,omitempty"`
}

// Clone returns a deep copy of the view.
func (v *View) Clone() *View {
	if v == nil {
		return nil
	}
	c := *v
	c.Paragraphs = append([]string(nil), v.Paragraphs...)
	c.Bullets = append([]string(nil), v.Bullets...)
	c.Facts = append([]Fact(nil), v.Facts...)
	c.Controls = append([]Control(nil), v.Controls...)
	c.Choices = append([]string(nil), v.Choices...)
	if v.Scoreboard != nil {
		sb := *v.Scoreboard
		c.Scoreboard = &sb
	}
	if v.Grid != nil {
		g := Grid{Cols: v.Grid.Cols, Cards: append([]CardView(nil), v.Grid.Cards...)}
		c.Grid = &g
	}
	if v.Message != nil {
		m := *v.Message
		c.Message = &m
	}
	return &c
}

// HasControl reports whether the view contains a control with the given ID.
func (v *View) HasControl(id string) bool {
	for _, c := range v.Controls {
		if c.ID == id {
			return true
		}
	}
	return false
}

// InputKind distinguishes participant inputs.
type InputKind string

const (
	InputClick  InputKind = "click"
	InputChoice InputKind = "choice"
)

// Input is one participant action: a click on an element or a choice.
type Input struct {
	Kind   InputKind `json:"kind"`
	Target string    `json:"target,omitempty"`
	Index  int       `json:"index,omitempty"`
}

// Click builds a click input on the element with the given ID.
func Click(target string) Input {
	return Input{Kind: InputClick, Target: target}
}

// Choose builds a choice input for the button at index.
func Choose(index int) Input {
	return Input{Kind: InputChoice, Index: index}
}

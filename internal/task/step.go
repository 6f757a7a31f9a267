package task

import "time"

// ChoiceKind describes which responses a step accepts.
type ChoiceKind int

const (
	ChoiceNone    ChoiceKind = iota // no direct response; interaction via bound handlers
	ChoiceButtons                   // one of a fixed list of labeled buttons
	ChoiceAny                       // any response
)

// Choices is the response set of a step.
type Choices struct {
	Kind   ChoiceKind
	Labels []string
}

// NoChoices accepts no direct response.
var NoChoices = Choices{Kind: ChoiceNone}

// Buttons accepts one of the given labeled buttons.
func Buttons(labels ...string) Choices {
	return Choices{Kind: ChoiceButtons, Labels: labels}
}

// Accepts reports whether a choice at index finishes the step.
func (c Choices) Accepts(index int) bool {
	switch c.Kind {
	case ChoiceAny:
		return true
	case ChoiceButtons:
		return index >= 0 && index < len(c.Labels)
	default:
		return false
	}
}

// Step is a declarative timeline step handed to the engine.
type Step struct {
	Type StepType
	Name string

	// Pages holds static pages for multi-page steps; the participant moves
	// forward one page per choice and the last page finishes the step.
	Pages []*View

	// Render computes the screen when the step is shown.
	Render func() *View

	Choices Choices

	// OnLoad runs once the rendered screen is visible.
	OnLoad func(s Surface)
}

// StepState is the engine's record of the step being shown.
type StepState struct {
	Index int
	Step  *Step
	Start time.Time
	Data  Record
}

// Engine is the host that sequences steps and stores their records.
type Engine interface {
	// CurrentStep returns the step being shown, or nil between steps.
	CurrentStep() *StepState
	// FinishStep ends the current step and advances the timeline.
	FinishStep()
	// Data returns the records of all finished steps.
	Data() Records
	// After runs fn once, after d, on the engine's event loop.
	After(d time.Duration, fn func())
	Now() time.Time
}

// Surface is the rendered screen of the current step. Every method reports
// false when the target element is absent; callers skip the update.
type Surface interface {
	Bind(target string, fn func()) bool
	Reveal(card int, face Face, label string) bool
	SetRoundScore(score int) bool
	SetMessage(msg Message) bool
}

package task

import (
	"fmt"
	"time"
)

// Finalization delays, so the participant sees the outcome before the
// timeline advances.
const (
	LossDelay     = 2000 * time.Millisecond
	CompleteDelay = 2000 * time.Millisecond
	StopDelay     = 1500 * time.Millisecond
)

const (
	msgLoss     = "Loss card! Round ended."
	msgComplete = "All gain cards found!"
	msgStopped  = "Round stopped!"
)

// Selection is one card flip: the card index and ms since round start.
type Selection struct {
	Card int   `json:"card"`
	Time int64 `json:"time"`
}

// RoundContext holds what the handlers of one round need.
type RoundContext struct {
	Number   int
	Config   RoundConfig
	NumCards int
	Cols     int
	Losses   PositionSet
}

// GainTarget is the number of flips that exhausts all gain cards.
func (rc *RoundContext) GainTarget() int {
	return rc.NumCards - rc.Config.LossCards
}

// RoundData is the live state of one round.
type RoundData struct {
	Score      int
	Cards      int
	Ended      bool
	StartTime  time.Time
	Selections []Selection

	revealed []bool
}

// NewRoundData starts a round of numCards face-down cards.
func NewRoundData(numCards int, start time.Time) *RoundData {
	return &RoundData{
		StartTime:  start,
		Selections: []Selection{},
		revealed:   make([]bool, numCards),
	}
}

// Revealed reports whether the card has been flipped.
func (rd *RoundData) Revealed(card int) bool {
	return card >= 0 && card < len(rd.revealed) && rd.revealed[card]
}

// Elapsed returns ms since the round started.
func (rd *RoundData) Elapsed(now time.Time) int64 {
	return now.Sub(rd.StartTime).Milliseconds()
}

// OutcomeKind classifies the result of a round input.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota // input ignored
	OutcomeGain
	OutcomeLoss
	OutcomeStop
)

// Outcome describes what a round input changed and what to show.
type Outcome struct {
	Kind  OutcomeKind
	Card  int
	Label string
	Delta int

	// Ended is set on the input that moved the round to its terminal state.
	Ended     bool
	Voluntary bool
	Delay     time.Duration
	Message   *Message
}

// Flip reveals card. Inputs while ended, on a revealed card, or outside the
// grid are ignored.
func (rd *RoundData) Flip(rc *RoundContext, card int, now time.Time) Outcome {
	if rd.Ended || card < 0 || card >= len(rd.revealed) || rd.revealed[card] {
		return Outcome{Kind: OutcomeNone, Card: card}
	}
	rd.revealed[card] = true
	rd.Cards++
	rd.Selections = append(rd.Selections, Selection{Card: card, Time: rd.Elapsed(now)})

	if rc.Losses.Contains(card) {
		rd.Score -= rc.Config.LossAmount
		rd.Ended = true
		return Outcome{
			Kind:    OutcomeLoss,
			Card:    card,
			Label:   fmt.Sprintf("-%d", rc.Config.LossAmount),
			Delta:   -rc.Config.LossAmount,
			Ended:   true,
			Delay:   LossDelay,
			Message: &Message{Text: msgLoss, Tone: ToneLoss},
		}
	}

	rd.Score += rc.Config.GainAmount
	out := Outcome{
		Kind:  OutcomeGain,
		Card:  card,
		Label: fmt.Sprintf("+%d", rc.Config.GainAmount),
		Delta: rc.Config.GainAmount,
	}
	if rd.Cards == rc.GainTarget() {
		rd.Ended = true
		out.Ended = true
		out.Voluntary = true
		out.Delay = CompleteDelay
		out.Message = &Message{Text: msgComplete, Tone: ToneGain}
	}
	return out
}

// Stop ends an active round voluntarily.
func (rd *RoundData) Stop() Outcome {
	if rd.Ended {
		return Outcome{Kind: OutcomeNone, Card: -1}
	}
	rd.Ended = true
	return Outcome{
		Kind:      OutcomeStop,
		Card:      -1,
		Ended:     true,
		Voluntary: true,
		Delay:     StopDelay,
		Message:   &Message{Text: msgStopped, Tone: ToneInfo},
	}
}

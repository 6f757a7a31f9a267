package task

import "time"

// GameState accumulates round results across one task invocation.
type GameState struct {
	TotalScore      int
	Round           *RoundData // nil between rounds
	RoundsCompleted int
}

// Reset clears all scores and drops any active round.
func (gs *GameState) Reset() {
	*gs = GameState{}
}

// StartRound replaces the active round with a fresh one.
func (gs *GameState) StartRound(numCards int, now time.Time) *RoundData {
	gs.Round = NewRoundData(numCards, now)
	return gs.Round
}

// Commit folds the active round into the totals and clears it. It returns
// false when no round is active.
func (gs *GameState) Commit() (*RoundData, bool) {
	rd := gs.Round
	if rd == nil {
		return nil, false
	}
	gs.TotalScore += rd.Score
	gs.RoundsCompleted++
	gs.Round = nil
	return rd, true
}

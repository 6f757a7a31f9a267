package task

import (
	"testing"

	"github.com/peterkuimelis/cct/internal/log"
)

// TestLossOnFirstFlip: 16 cards, loss card fixed at index 0, flipped first.
func TestLossOnFirstFlip(t *testing.T) {
	tk, eng, s, logger := startRound(t, alwaysZero(), DefaultRound(), 16)

	s.flip(t, 0)

	if s.faces[0] != FaceLoss || s.labels[0] != "-250" {
		t.Errorf("expected card 0 shown as loss, got %s %q", s.faces[0], s.labels[0])
	}
	if len(s.messages) != 1 || s.messages[0].Text != msgLoss {
		t.Errorf("expected loss message, got %+v", s.messages)
	}
	if len(eng.timers) != 1 || eng.timers[0].delay != LossDelay {
		t.Fatalf("expected one finalize timer of %v, got %+v", LossDelay, eng.timers)
	}
	if eng.finished != 0 {
		t.Fatal("step finished before the finalize delay")
	}

	eng.fireTimers()

	st := tk.State()
	if st.TotalScore != -250 || st.RoundsCompleted != 1 || st.Round != nil {
		t.Errorf("unexpected state after finalize: %+v", st)
	}
	if eng.finished != 1 {
		t.Fatalf("expected step finished once, got %d", eng.finished)
	}
	rec := eng.data[0]
	if rec["task"] != TaskTag || rec["round"] != 1 {
		t.Errorf("unexpected record header: %v", rec)
	}
	if rec["round_score"] != -250 || rec["total_score"] != -250 {
		t.Errorf("unexpected scores in record: %v", rec)
	}
	if rec["voluntary_stop"] != false || rec["cards_selected"] != 1 {
		t.Errorf("expected involuntary stop with 1 card, got %v", rec)
	}
	if rec["loss_cards"] != 1 || rec["gain_amount"] != 10 || rec["loss_amount"] != 250 {
		t.Errorf("round config not spread into record: %v", rec)
	}
	if rec["rt"] != int64(LossDelay.Milliseconds()) {
		t.Errorf("expected rt %d, got %v", LossDelay.Milliseconds(), rec["rt"])
	}
	sel := rec["selections"].([]Selection)
	if len(sel) != 1 || sel[0].Card != 0 || sel[0].Time != 0 {
		t.Errorf("unexpected selections: %+v", sel)
	}
	if len(logger.EventsOfType(log.EventRoundEnd)) != 1 {
		t.Errorf("expected one RoundEnd event")
	}
}

// TestExhaustAllGainCards: loss card at index 0, flip 1..15 in order.
func TestExhaustAllGainCards(t *testing.T) {
	tk, eng, s, logger := startRound(t, alwaysZero(), DefaultRound(), 16)

	for card := 1; card < 16; card++ {
		s.flip(t, card)
	}
	if s.score != 150 {
		t.Errorf("expected displayed round score 150, got %d", s.score)
	}
	if len(eng.timers) != 1 || eng.timers[0].delay != CompleteDelay {
		t.Fatalf("expected one completion timer, got %+v", eng.timers)
	}
	eng.fireTimers()

	st := tk.State()
	if st.TotalScore != 150 || st.RoundsCompleted != 1 {
		t.Errorf("unexpected state: %+v", st)
	}
	rec := eng.data[0]
	if rec["voluntary_stop"] != true || rec["cards_selected"] != 15 || rec["round_score"] != 150 {
		t.Errorf("unexpected record: %v", rec)
	}
	if len(logger.EventsOfType(log.EventAllGainsFound)) != 1 {
		t.Errorf("expected AllGainsFound event")
	}
}

func TestVoluntaryStop(t *testing.T) {
	tk, eng, s, _ := startRound(t, alwaysZero(), DefaultRound(), 16)

	s.flip(t, 4)
	s.flip(t, 9)
	s.click(t, StopTarget)

	if len(eng.timers) != 1 || eng.timers[0].delay != StopDelay {
		t.Fatalf("expected one stop timer of %v, got %+v", StopDelay, eng.timers)
	}
	if len(s.messages) != 1 || s.messages[0].Text != msgStopped {
		t.Errorf("expected stop message, got %+v", s.messages)
	}
	eng.fireTimers()

	if tk.State().TotalScore != 20 {
		t.Errorf("expected total 20, got %d", tk.State().TotalScore)
	}
	if eng.data[0]["voluntary_stop"] != true {
		t.Errorf("expected voluntary stop")
	}
}

func TestEndedRoundSchedulesOnce(t *testing.T) {
	tk, eng, s, _ := startRound(t, alwaysZero(), DefaultRound(), 16)

	s.flip(t, 0)
	s.flip(t, 1)
	s.click(t, StopTarget)
	s.flip(t, 0)

	if len(eng.timers) != 1 {
		t.Fatalf("expected exactly one finalize timer, got %d", len(eng.timers))
	}
	eng.fireTimers()

	// A stray late finalize must not count the round twice.
	tk.EndRound(eng, &RoundContext{Number: 1}, true)

	st := tk.State()
	if st.RoundsCompleted != 1 || st.TotalScore != -250 {
		t.Errorf("unexpected state: %+v", st)
	}
	if eng.finished != 1 {
		t.Errorf("expected one finished step, got %d", eng.finished)
	}
}

func TestStaleHandlersAfterResetAreIgnored(t *testing.T) {
	tk, eng, s, _ := startRound(t, alwaysZero(), DefaultRound(), 16)

	s.flip(t, 3)
	tk.Reset()
	s.flip(t, 4)
	s.click(t, StopTarget)

	st := tk.State()
	if st.Round != nil || st.TotalScore != 0 || st.RoundsCompleted != 0 {
		t.Errorf("expected reset state, got %+v", st)
	}
	if len(eng.timers) != 0 {
		t.Errorf("stale handlers scheduled a finalize")
	}
}

func TestMissingSurfaceTargetsAreSkipped(t *testing.T) {
	logger := log.NewMemoryLogger()
	tk := New(Config{Source: alwaysZero(), Logger: logger})
	eng := newFakeEngine()
	s := newFakeSurface()
	s.absent = true
	tk.SetupRound(eng, s, DefaultRound(), 1, 4, 16)

	if _, ok := s.handlers[StopTarget]; ok {
		t.Fatal("stop handler should not bind on a screen without a stop control")
	}
	s.flip(t, 2)
	s.flip(t, 0)
	eng.fireTimers()

	if tk.State().TotalScore != -240 {
		t.Errorf("expected -240, got %d", tk.State().TotalScore)
	}
}

func TestTotalsAcrossRounds(t *testing.T) {
	tk := New(Config{Source: alwaysZero()})
	eng := newFakeEngine()

	// Round 1: stop after two gains.
	s1 := newFakeSurface()
	tk.SetupRound(eng, s1, DefaultRound(), 1, 4, 16)
	s1.flip(t, 1)
	s1.flip(t, 2)
	s1.click(t, StopTarget)
	eng.fireTimers()

	// Round 2: custom payouts, hit the loss card.
	s2 := newFakeSurface()
	tk.SetupRound(eng, s2, RoundConfig{LossCards: 1, GainAmount: 30, LossAmount: 100}, 2, 4, 16)
	s2.flip(t, 5)
	s2.flip(t, 0)
	eng.fireTimers()

	st := tk.State()
	if st.RoundsCompleted != 2 {
		t.Errorf("expected 2 rounds, got %d", st.RoundsCompleted)
	}
	if want := 20 + (30 - 100); st.TotalScore != want {
		t.Errorf("expected total %d, got %d", want, st.TotalScore)
	}
	if eng.data[1]["total_score"] != st.TotalScore || eng.data[1]["round"] != 2 {
		t.Errorf("unexpected round 2 record: %v", eng.data[1])
	}
}

func TestCreateTimelineDefaults(t *testing.T) {
	tk := New(Config{Source: alwaysZero()})
	steps := tk.CreateTimeline(newFakeEngine(), DefaultOptions())

	if want := 1 + 2*DefaultRoundCount + 1; len(steps) != want {
		t.Fatalf("expected %d steps, got %d", want, len(steps))
	}
	if steps[0].Name != "instructions" || len(steps[0].Pages) != 2 {
		t.Errorf("expected instructions first, got %q", steps[0].Name)
	}
	for i := 0; i < DefaultRoundCount; i++ {
		info, game := steps[1+2*i], steps[2+2*i]
		if info.Name != "round_info" || game.Name != "card_game" {
			t.Errorf("round %d: got %q, %q", i+1, info.Name, game.Name)
		}
		if game.Choices.Kind != ChoiceNone || game.OnLoad == nil {
			t.Errorf("round %d: card game must take no choices and have an OnLoad hook", i+1)
		}
	}
	if steps[len(steps)-1].Name != "results" {
		t.Errorf("expected results last")
	}
}

func TestCreateTimelineNoRounds(t *testing.T) {
	tk := New(Config{Source: alwaysZero()})
	opts := DefaultOptions()
	opts.Rounds = nil

	steps := tk.CreateTimeline(newFakeEngine(), opts)
	if len(steps) != 2 || steps[0].Name != "instructions" || steps[1].Name != "results" {
		t.Errorf("expected only instructions and results, got %d steps", len(steps))
	}

	opts.ShowInstructions = false
	opts.ShowResults = false
	if steps := tk.CreateTimeline(newFakeEngine(), opts); len(steps) != 0 {
		t.Errorf("expected empty timeline, got %d steps", len(steps))
	}
}

func TestCreateTimelineResetsState(t *testing.T) {
	tk, eng, s, _ := startRound(t, alwaysZero(), DefaultRound(), 16)
	s.flip(t, 1)
	s.click(t, StopTarget)
	eng.fireTimers()
	if tk.State().TotalScore == 0 {
		t.Fatal("setup: expected a non-zero total")
	}

	tk.CreateTimeline(eng, DefaultOptions())
	st := tk.State()
	if st.TotalScore != 0 || st.RoundsCompleted != 0 || st.Round != nil {
		t.Errorf("expected reset state, got %+v", st)
	}
}

func TestRoundInfoShowsRunningTotal(t *testing.T) {
	tk, eng, s, _ := startRound(t, alwaysZero(), DefaultRound(), 16)
	s.flip(t, 7)
	s.click(t, StopTarget)
	eng.fireTimers()

	v := tk.RoundInfo(2, 8, RoundConfig{LossCards: 3, GainAmount: 20, LossAmount: 750}).Render()
	if v.Title != "Round 2 of 8" {
		t.Errorf("unexpected title %q", v.Title)
	}
	want := []string{"3", "-750", "+20", "10"}
	for i, f := range v.Facts {
		if f.Value != want[i] {
			t.Errorf("fact %q: expected %q, got %q", f.Label, want[i], f.Value)
		}
	}
}

func TestCardGameRender(t *testing.T) {
	tk := New(Config{Source: alwaysZero()})
	v := tk.CardGame(newFakeEngine(), 3, DefaultRound(), 12, 3).Render()

	if v.Grid == nil || v.Grid.Cols != 3 || len(v.Grid.Cards) != 12 {
		t.Fatalf("unexpected grid: %+v", v.Grid)
	}
	for i, c := range v.Grid.Cards {
		if c.Face != FaceDown || c.ID != CardTarget(i) {
			t.Errorf("card %d: expected face-down %s, got %+v", i, CardTarget(i), c)
		}
	}
	if !v.HasControl(StopTarget) || v.Message == nil || v.Scoreboard.Round != 3 {
		t.Errorf("card game view missing stop control, message, or scoreboard")
	}
}

func TestResultsSummary(t *testing.T) {
	tk := New(Config{Source: alwaysZero()})
	eng := newFakeEngine()
	eng.data = Records{
		{"task": "instructions"},
		RoundResult{Round: 1, CardsSelected: 3, TotalScore: 30}.Record(),
		RoundResult{Round: 2, CardsSelected: 4, TotalScore: -190}.Record(),
	}

	v := tk.Results(eng).Render()
	if v.Facts[0].Value != "-190" {
		t.Errorf("expected final score -190, got %s", v.Facts[0].Value)
	}
	if v.Facts[1].Value != "3.5" {
		t.Errorf("expected average 3.5, got %s", v.Facts[1].Value)
	}

	empty := tk.Results(newFakeEngine()).Render()
	if empty.Facts[0].Value != "0" || empty.Facts[1].Value != "0.0" {
		t.Errorf("expected zero summary, got %+v", empty.Facts)
	}
}

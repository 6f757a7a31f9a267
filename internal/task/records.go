package task

import (
	"reflect"
)

// TaskTag marks round result records.
const TaskTag = "round_complete"

// Record is the flat data collected for one step.
type Record map[string]any

// Records is the engine's store of collected step records.
type Records []Record

// Filter returns the records whose fields equal every value in match.
// Numbers compare by value regardless of their Go type.
func (rs Records) Filter(match map[string]any) Records {
	var out Records
	for _, r := range rs {
		ok := true
		for k, want := range match {
			got, present := r[k]
			if !present || !valuesEqual(got, want) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of records.
func (rs Records) Count() int {
	return len(rs)
}

// Select extracts one field from every record that has it.
func (rs Records) Select(field string) Column {
	col := Column{Field: field}
	for _, r := range rs {
		if v, ok := r[field]; ok {
			col.Values = append(col.Values, v)
		}
	}
	return col
}

// Column is one field selected across records.
type Column struct {
	Field  string
	Values []any
}

// Mean averages the numeric values, or returns 0 when there are none.
func (c Column) Mean() float64 {
	var sum float64
	var n int
	for _, v := range c.Values {
		if f, ok := toFloat(v); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Last returns the final value, or nil for an empty column.
func (c Column) Last() any {
	if len(c.Values) == 0 {
		return nil
	}
	return c.Values[len(c.Values)-1]
}

// LastInt returns the final value as an int, or 0.
func (c Column) LastInt() int {
	f, _ := toFloat(c.Last())
	return int(f)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func valuesEqual(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// RoundResult is the record written when a round is finalized.
type RoundResult struct {
	Round         int
	Config        RoundConfig
	CardsSelected int
	RoundScore    int
	TotalScore    int
	VoluntaryStop bool
	Selections    []Selection
	RT            int64
}

// Record flattens the result, spreading the round configuration in.
func (rr RoundResult) Record() Record {
	return Record{
		"task":           TaskTag,
		"round":          rr.Round,
		"loss_cards":     rr.Config.LossCards,
		"gain_amount":    rr.Config.GainAmount,
		"loss_amount":    rr.Config.LossAmount,
		"cards_selected": rr.CardsSelected,
		"round_score":    rr.RoundScore,
		"total_score":    rr.TotalScore,
		"voluntary_stop": rr.VoluntaryStop,
		"selections":     rr.Selections,
		"rt":             rr.RT,
	}
}

// Summary is the aggregate shown on the results screen.
type Summary struct {
	Rounds       int     `json:"rounds"`
	FinalScore   int     `json:"final_score"`
	AverageCards float64 `json:"average_cards"`
}

// Summarize computes the results-screen summary from collected records.
func Summarize(data Records) Summary {
	rounds := data.Filter(map[string]any{"task": TaskTag})
	s := Summary{Rounds: rounds.Count()}
	if s.Rounds > 0 {
		s.AverageCards = rounds.Select("cards_selected").Mean()
		s.FinalScore = rounds.Select("total_score").LastInt()
	}
	return s
}

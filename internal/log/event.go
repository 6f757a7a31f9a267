package log

// EventType enumerates all observable task events.
type EventType int

const (
	EventTaskStart EventType = iota
	EventStepStart
	EventStepFinish
	EventRoundStart
	EventCardGain
	EventCardLoss
	EventAllGainsFound
	EventRoundStop
	EventRoundEnd
	EventTaskEnd
)

func (e EventType) String() string {
	switch e {
	case EventTaskStart:
		return "TaskStart"
	case EventStepStart:
		return "StepStart"
	case EventStepFinish:
		return "StepFinish"
	case EventRoundStart:
		return "RoundStart"
	case EventCardGain:
		return "CardGain"
	case EventCardLoss:
		return "CardLoss"
	case EventAllGainsFound:
		return "AllGainsFound"
	case EventRoundStop:
		return "RoundStop"
	case EventRoundEnd:
		return "RoundEnd"
	case EventTaskEnd:
		return "TaskEnd"
	default:
		return "Unknown"
	}
}

// TaskEvent represents a single observable event in a task session.
type TaskEvent struct {
	Seq     int       // monotonic sequence number
	Step    int       // timeline step index (0-based), -1 outside a step
	Round   int       // round number (1-based), 0 outside a round
	Type    EventType // event type
	Card    int       // card index for flip events, -1 otherwise
	Score   int       // round score (or total score for RoundEnd/TaskEnd)
	Details string    // human-readable detail string
}

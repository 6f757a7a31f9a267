package net

import (
	"github.com/peterkuimelis/cct/internal/task"
)

// Message types for the newline-delimited JSON protocol over TCP.

// --- Server → Client messages ---

const (
	MsgRender   = "render"
	MsgNotify   = "notify"
	MsgTaskOver = "task_over"
)

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "render"
	View *task.View `json:"view,omitempty"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "task_over"
	Summary *task.Summary `json:"summary,omitempty"`
	Records task.Records  `json:"records,omitempty"`
	Result  string        `json:"result,omitempty"`
}

// EventView is a simplified task event for the client.
type EventView struct {
	Step    int    `json:"step"`
	Round   int    `json:"round,omitempty"`
	Type    string `json:"type"`
	Card    int    `json:"card"`
	Score   int    `json:"score"`
	Details string `json:"details"`
}

// --- Client → Server messages ---

const (
	MsgJoin   = "join"
	MsgClick  = "click"
	MsgChoice = "choice"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "click"
	Target string `json:"target,omitempty"`

	// For "choice"
	Index int `json:"index,omitempty"`

	// For "join" (initial handshake)
	Participant string `json:"participant,omitempty"`
}

// Input converts a click or choice message into a task input.
func (m ClientMessage) Input() (task.Input, bool) {
	switch m.Type {
	case MsgClick:
		return task.Click(m.Target), true
	case MsgChoice:
		return task.Choose(m.Index), true
	default:
		return task.Input{}, false
	}
}

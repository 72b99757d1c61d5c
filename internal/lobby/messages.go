// Package lobby runs networked races over WebSocket: a host server that owns
// the race sessions, and a client feed the TUI consumes when joining.
package lobby

import "github.com/m4dpr0f/cjsr-sub002/internal/race"

// Message is the wire envelope between host and clients. The protocol is an
// internal detail of this package; the engine only ever sees progress and
// lifecycle events.
type Message struct {
	Type     string               `json:"type"`
	Room     string               `json:"room,omitempty"`
	Error    string               `json:"error,omitempty"`
	Welcome  *Welcome             `json:"welcome,omitempty"`
	State    *race.Snapshot       `json:"state,omitempty"`
	Progress *race.ProgressEvent  `json:"progress,omitempty"`
	Finish   *race.FinishEvent    `json:"finish,omitempty"`
}

// Message types.
const (
	TypeWelcome  = "welcome"
	TypeState    = "state"
	TypeProgress = "progress"
	TypeFinish   = "finish"
	TypeError    = "error"
)

// Welcome tells a freshly joined client who it is and what it will type.
type Welcome struct {
	ParticipantID string `json:"participantId"`
	Text          string `json:"text"`
}

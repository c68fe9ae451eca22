package entity

import "time"

// Session is the ephemeral per-user state of an in-progress questionnaire.
// It is owned by the session store and mutated only by the conversation
// engine, always under the store's per-user lock.
type Session struct {
	UserID    int64
	Flow      string
	StepIndex int
	Answers   map[string]string
	StartedAt time.Time
}

type EventKind string

const (
	EventCommand  EventKind = "command"
	EventCallback EventKind = "callback"
	EventText     EventKind = "text"
)

// Event is the normalized inbound contract from the transport layer.
// The core never sees transport envelopes, only a user id and a payload.
type Event struct {
	UserID    int64     `json:"user_id"`
	Kind      EventKind `json:"kind"`
	Payload   string    `json:"payload"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
}

// Reply is the outbound prompt contract. Options, when present, enumerate
// the selectable answers; how they render is up to the transport.
type Reply struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
	Done    bool     `json:"done,omitempty"`
}

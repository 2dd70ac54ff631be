package websocket

import "github.com/catprepedge/catprep-backend/internal/session"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect   Action = "select"
	ActionReveal   Action = "reveal"
	ActionMark     Action = "mark"
	ActionGoTo     Action = "goto"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionState    Action = "state"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestPayload is one client command. Option is used by select,
// Index by goto.
type RequestPayload struct {
	Action Action `json:"action"`
	Option string `json:"option,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState   Event = "state"
	EventTick    Event = "tick"
	EventExpired Event = "expired"
	EventResult  Event = "result"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// ErrorKind classifies an EventError.
type ErrorKind string

const (
	ErrorKindMissingParameter ErrorKind = "missing_parameter"
	ErrorKindFetch            ErrorKind = "fetch"
	ErrorKindEmpty            ErrorKind = "empty"
	ErrorKindInvalidAction    ErrorKind = "invalid_action"
	ErrorKindRejected         ErrorKind = "rejected"
	ErrorKindInternal         ErrorKind = "internal"
)

// StateResponse carries a full session snapshot.
type StateResponse struct {
	Event Event            `json:"event"`
	State session.Snapshot `json:"state"`
}

// TickResponse is the lightweight per-second countdown update.
type TickResponse struct {
	Event                Event `json:"event"`
	TimeRemainingSeconds int   `json:"time_remaining_seconds"`
}

// ResultResponse is sent once after submit.
type ResultResponse struct {
	Event  Event            `json:"event"`
	Result session.Result   `json:"result"`
	State  session.Snapshot `json:"state"`
}

type ErrorResponse struct {
	Event Event     `json:"event"`
	Kind  ErrorKind `json:"kind"`
	Error string    `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

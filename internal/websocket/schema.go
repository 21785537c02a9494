package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionBegin    Action = "begin"
	ActionAnswer   Action = "answer"
	ActionMastered Action = "mastered"
	ActionAdvance  Action = "advance"
	ActionFinish   Action = "finish"
	ActionPing     Action = "ping"
)

// Request is a client message. Index is only read for answer.
type Request struct {
	Action Action `json:"action"`
	Index  *int   `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState   Event = "state"
	EventOutcome Event = "outcome"
	EventSummary Event = "summary"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// StateResponse carries the learner-facing quiz view.
type StateResponse struct {
	Event Event       `json:"event"`
	Quiz  interface{} `json:"quiz"`
}

// OutcomeResponse reports a submission. The server advances on its own
// after AdvanceAfter milliseconds unless the client sends advance first.
type OutcomeResponse struct {
	Event        Event       `json:"event"`
	Outcome      interface{} `json:"outcome"`
	AdvanceAfter int64       `json:"advance_after_ms"`
	Quiz         interface{} `json:"quiz"`
}

// SummaryResponse is sent once when the session is finished.
type SummaryResponse struct {
	Event   Event       `json:"event"`
	Summary interface{} `json:"summary"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

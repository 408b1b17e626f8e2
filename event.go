package everruns

import "encoding/json"

// Event type vocabulary emitted by the server. Delta types are high-volume
// and commonly excluded via WithoutDeltas.
const (
	EventInputMessage           = "input.message"
	EventOutputMessageCompleted = "output.message.completed"
	EventOutputMessageDelta     = "output.message.delta"
	EventReasonThinkingDelta    = "reason.thinking.delta"
	EventTurnCompleted          = "turn.completed"
	EventTurnFailed             = "turn.failed"
)

// Event is one append-only entry in a session's event log. IDs are opaque
// and monotonically assigned by the server within a session; they double as
// the stream resumption cursor. The Data payload is untyped at the wire
// boundary; structure is asserted only where it is consumed (see
// ExtractToolCalls).
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	TS        string          `json:"ts"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
	Context   EventContext    `json:"context"`
}

// EventContext correlates an event to a turn and its originating input
// message.
type EventContext struct {
	TurnID         string `json:"turn_id,omitempty"`
	InputMessageID string `json:"input_message_id,omitempty"`
}

// Terminal reports whether the event ends a turn. The stream itself stays
// open past terminal events; breaking out is the consumer's decision.
func (e *Event) Terminal() bool {
	return e.Type == EventTurnCompleted || e.Type == EventTurnFailed
}

// valid reports whether the decoded frame carries every required key.
func (e *Event) valid() bool {
	return e.ID != "" && e.Type != "" && e.TS != "" && e.SessionID != "" && len(e.Data) > 0
}

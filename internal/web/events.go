package web

import (
	"encoding/json"
	"errors"
	"fmt"
)

// WebSocket event types
const (
	EventSessionReady   = "session.ready"
	EventStatsState     = "stats.state"
	EventScrollTop      = "stats.scroll_top"
	EventCommandFailed  = "stats.command_failed"
	EventServerShutdown = "server.shutdown"
)

// Client commands
const (
	ActionPage  = "page"
	ActionLimit = "limit"
	ActionRetry = "retry"
)

// WSEvent represents a structured WebSocket message
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SessionPayload is the payload for EventSessionReady and EventScrollTop.
type SessionPayload struct {
	SessionID string `json:"session_id"`
}

// StatsStatePayload is the payload for EventStatsState. HTML is the
// rendered stats body for the state.
type StatsStatePayload struct {
	SessionID  string `json:"session_id"`
	Status     string `json:"status"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
	Retrying   bool   `json:"retrying"`
	Message    string `json:"message,omitempty"`
	HTML       string `json:"html"`
}

// CommandFailedPayload is the payload for EventCommandFailed.
type CommandFailedPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

// Command is a message sent by a live stats client.
type Command struct {
	Action string `json:"action"`
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

var errUnknownAction = errors.New("unknown action")

// ParseCommand decodes a client message.
func ParseCommand(b []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(b, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch cmd.Action {
	case ActionPage, ActionLimit, ActionRetry:
		return cmd, nil
	default:
		return cmd, fmt.Errorf("%w %q", errUnknownAction, cmd.Action)
	}
}

func marshalEvent(eventType string, payload interface{}) []byte {
	b, _ := json.Marshal(WSEvent{Type: eventType, Payload: payload})
	return b
}

// SessionReadyEvent announces the id of a new live session.
func SessionReadyEvent(sessionID string) []byte {
	return marshalEvent(EventSessionReady, SessionPayload{SessionID: sessionID})
}

// StatsStateEvent carries one view state.
func StatsStateEvent(p StatsStatePayload) []byte {
	return marshalEvent(EventStatsState, p)
}

// ScrollTopEvent asks the client to scroll to the top of the page.
func ScrollTopEvent(sessionID string) []byte {
	return marshalEvent(EventScrollTop, SessionPayload{SessionID: sessionID})
}

// CommandFailedEvent reports a command that was rejected.
func CommandFailedEvent(action string, err error) []byte {
	return marshalEvent(EventCommandFailed, CommandFailedPayload{Action: action, Error: err.Error()})
}

// ServerShutdownEvent tells every client the server is going away.
func ServerShutdownEvent() []byte {
	return marshalEvent(EventServerShutdown, struct{}{})
}

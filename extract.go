package everruns

import (
	"encoding/json"
	"strings"
)

// ToolCallInfo is the read-only projection of a tool_call content part.
type ToolCallInfo struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ExtractToolCalls returns the pending tool invocations found in an event's
// data payload. It looks for message.content; a missing or non-array
// content yields an empty result, and parts without an id or name are
// skipped. Arguments default to an empty map. The function is pure: no side
// effects, same input, same output.
func ExtractToolCalls(data json.RawMessage) []ToolCallInfo {
	var payload struct {
		Message struct {
			Content []struct {
				Type      string         `json:"type"`
				ID        string         `json:"id"`
				Name      string         `json:"name"`
				Arguments map[string]any `json:"arguments"`
			} `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}

	var calls []ToolCallInfo
	for _, part := range payload.Message.Content {
		if part.Type != "tool_call" || part.ID == "" || part.Name == "" {
			continue
		}
		args := part.Arguments
		if args == nil {
			args = map[string]any{}
		}
		calls = append(calls, ToolCallInfo{ID: part.ID, Name: part.Name, Arguments: args})
	}
	return calls
}

// ExtractText joins the text parts of message.content in an event's data
// payload with newlines. It returns "" when the payload carries no text.
func ExtractText(data json.RawMessage) string {
	var payload struct {
		Message struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}

	var texts []string
	for _, part := range payload.Message.Content {
		if part.Type == "text" && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

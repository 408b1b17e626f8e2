package everruns

import (
	"context"
	"fmt"
	"net/http"
)

// MessagesClient performs message operations. Obtain one via Client.Messages.
type MessagesClient struct {
	client *Client
}

// List returns a session's messages ordered by sequence.
func (m *MessagesClient) List(ctx context.Context, sessionID string) (*ListResponse[Message], error) {
	var resp ListResponse[Message]
	if err := m.client.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create sends a user text message into a session.
func (m *MessagesClient) Create(ctx context.Context, sessionID, text string) (*Message, error) {
	return m.CreateWithOptions(ctx, sessionID, CreateMessageRequest{Message: UserText(text)})
}

// CreateWithOptions sends a message with full request control, including
// per-message generation controls.
func (m *MessagesClient) CreateWithOptions(ctx context.Context, sessionID string, req CreateMessageRequest) (*Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var msg Message
	if err := m.client.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/messages", &req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateToolResults submits the results of a batch of tool calls as a
// single tool_result message, preserving order.
func (m *MessagesClient) CreateToolResults(ctx context.Context, sessionID string, results []*ToolResultPart) (*Message, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: tool results must not be empty", ErrInvalidRequest)
	}
	content := make(Parts, len(results))
	for i, r := range results {
		if r == nil {
			return nil, fmt.Errorf("%w: tool result %d is nil", ErrInvalidRequest, i)
		}
		content[i] = r
	}
	req := CreateMessageRequest{Message: MessageInput{Role: RoleToolResult, Content: content}}
	return m.CreateWithOptions(ctx, sessionID, req)
}

package everruns

import (
	"context"
	"net/http"
	"net/url"
)

// SessionsClient performs session operations. Obtain one via Client.Sessions.
type SessionsClient struct {
	client *Client
}

// List returns the organization's sessions.
func (s *SessionsClient) List(ctx context.Context) (*ListResponse[Session], error) {
	var resp ListResponse[Session]
	if err := s.client.do(ctx, http.MethodGet, "/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListByAgent returns the sessions created against one agent.
func (s *SessionsClient) ListByAgent(ctx context.Context, agentID string) (*ListResponse[Session], error) {
	var resp ListResponse[Session]
	path := "/sessions?agent_id=" + url.QueryEscape(agentID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a session by ID.
func (s *SessionsClient) Get(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	if err := s.client.do(ctx, http.MethodGet, "/sessions/"+sessionID, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create creates a session against one agent.
func (s *SessionsClient) Create(ctx context.Context, agentID string) (*Session, error) {
	return s.CreateWithOptions(ctx, CreateSessionRequest{AgentID: agentID})
}

// CreateWithOptions creates a session with full request control.
func (s *SessionsClient) CreateWithOptions(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var session Session
	if err := s.client.do(ctx, http.MethodPost, "/sessions", &req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete deletes a session.
func (s *SessionsClient) Delete(ctx context.Context, sessionID string) error {
	return s.client.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil)
}

// Cancel aborts the session's current turn.
func (s *SessionsClient) Cancel(ctx context.Context, sessionID string) error {
	return s.client.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/cancel", struct{}{}, nil)
}

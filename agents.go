package everruns

import (
	"context"
	"net/http"
)

// AgentsClient performs agent operations. Obtain one via Client.Agents.
type AgentsClient struct {
	client *Client
}

// List returns the organization's agents.
func (a *AgentsClient) List(ctx context.Context) (*ListResponse[Agent], error) {
	var resp ListResponse[Agent]
	if err := a.client.do(ctx, http.MethodGet, "/agents", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns an agent by ID.
func (a *AgentsClient) Get(ctx context.Context, agentID string) (*Agent, error) {
	var agent Agent
	if err := a.client.do(ctx, http.MethodGet, "/agents/"+agentID, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Create creates an agent from the required fields.
func (a *AgentsClient) Create(ctx context.Context, name, systemPrompt string) (*Agent, error) {
	return a.CreateWithOptions(ctx, CreateAgentRequest{Name: name, SystemPrompt: systemPrompt})
}

// CreateWithOptions creates an agent with full request control.
func (a *AgentsClient) CreateWithOptions(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var agent Agent
	if err := a.client.do(ctx, http.MethodPost, "/agents", &req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Delete archives an agent.
func (a *AgentsClient) Delete(ctx context.Context, agentID string) error {
	return a.client.do(ctx, http.MethodDelete, "/agents/"+agentID, nil, nil)
}

package everruns

import "fmt"

// AgentStatus is the lifecycle state of an agent. Agents are archived, never
// hard-deleted.
type AgentStatus string

const (
	AgentActive   AgentStatus = "active"
	AgentArchived AgentStatus = "archived"
)

// SessionStatus is the server-driven state of a session.
type SessionStatus string

const (
	SessionStarted SessionStatus = "started"
	SessionActive  SessionStatus = "active"
	SessionIdle    SessionStatus = "idle"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAgent      Role = "agent"
	RoleToolResult Role = "tool_result"
)

// CapabilityConfig references a capability by ID with optional per-agent
// configuration.
type CapabilityConfig struct {
	Ref    string         `json:"ref"`
	Config map[string]any `json:"config,omitempty"`
}

// Agent is a configured conversational agent.
type Agent struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	SystemPrompt   string             `json:"system_prompt"`
	DefaultModelID string             `json:"default_model_id,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	Capabilities   []CapabilityConfig `json:"capabilities,omitempty"`
	Status         AgentStatus        `json:"status"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

// TokenUsage carries per-session token counters.
type TokenUsage struct {
	InputTokens     int64 `json:"input_tokens"`
	OutputTokens    int64 `json:"output_tokens"`
	CacheReadTokens int64 `json:"cache_read_tokens"`
}

// Session is an ongoing conversation bound to exactly one agent.
type Session struct {
	ID             string             `json:"id"`
	OrganizationID string             `json:"organization_id"`
	AgentID        string             `json:"agent_id"`
	Title          string             `json:"title,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	ModelID        string             `json:"model_id,omitempty"`
	Capabilities   []CapabilityConfig `json:"capabilities,omitempty"`
	Status         SessionStatus      `json:"status"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
	Usage          *TokenUsage        `json:"usage,omitempty"`
}

// Message is one immutable entry in a session. Sequence numbers are unique
// and strictly increasing within a session.
type Message struct {
	ID        string   `json:"id"`
	SessionID string   `json:"session_id"`
	Sequence  int64    `json:"sequence"`
	Role      Role     `json:"role"`
	Content   Parts    `json:"content"`
	Thinking  string   `json:"thinking,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// CreateAgentRequest creates a new agent. Name and SystemPrompt are
// required; ID is an optional client-supplied identifier in the
// agent_<32 hex> format (see NewAgentID) and is generated server-side when
// omitted.
type CreateAgentRequest struct {
	ID             string             `json:"id,omitempty"`
	Name           string             `json:"name"`
	SystemPrompt   string             `json:"system_prompt"`
	Description    string             `json:"description,omitempty"`
	DefaultModelID string             `json:"default_model_id,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	Capabilities   []CapabilityConfig `json:"capabilities,omitempty"`
}

// Validate reports a configuration problem before any network call is made.
func (r *CreateAgentRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: agent name is required", ErrInvalidRequest)
	}
	if r.SystemPrompt == "" {
		return fmt.Errorf("%w: agent system prompt is required", ErrInvalidRequest)
	}
	if r.ID != "" && !validAgentID(r.ID) {
		return fmt.Errorf("%w: agent ID must have the form agent_<32 hex>", ErrInvalidRequest)
	}
	return nil
}

// CreateSessionRequest creates a new session against one agent.
type CreateSessionRequest struct {
	AgentID      string             `json:"agent_id"`
	Title        string             `json:"title,omitempty"`
	ModelID      string             `json:"model_id,omitempty"`
	Capabilities []CapabilityConfig `json:"capabilities,omitempty"`
}

func (r *CreateSessionRequest) Validate() error {
	if r.AgentID == "" {
		return fmt.Errorf("%w: session agent_id is required", ErrInvalidRequest)
	}
	return nil
}

// Controls are optional per-message generation overrides. They are purely
// request-side and never persisted.
type Controls struct {
	ModelID     string   `json:"model_id,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// MessageInput is the caller-supplied part of a message.
type MessageInput struct {
	Role    Role  `json:"role"`
	Content Parts `json:"content"`
}

// UserText builds a single-part user text message input.
func UserText(text string) MessageInput {
	return MessageInput{Role: RoleUser, Content: Parts{Text(text)}}
}

// CreateMessageRequest posts a message into a session, optionally with
// generation controls.
type CreateMessageRequest struct {
	Message  MessageInput `json:"message"`
	Controls *Controls    `json:"controls,omitempty"`
}

func (r *CreateMessageRequest) Validate() error {
	switch r.Message.Role {
	case RoleUser, RoleToolResult:
	default:
		return fmt.Errorf("%w: message role must be user or tool_result, got %q", ErrInvalidRequest, r.Message.Role)
	}
	if len(r.Message.Content) == 0 {
		return fmt.Errorf("%w: message content must not be empty", ErrInvalidRequest)
	}
	return nil
}

// ListResponse is the common paginated collection envelope.
type ListResponse[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Offset int64 `json:"offset"`
	Limit  int64 `json:"limit"`
}

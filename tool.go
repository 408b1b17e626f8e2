package everruns

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/everruns/everruns-sdk-go/internal/schema"
)

// Tool is the generic interface for client-side tools. The type parameter T
// defines the argument struct deserialized from the tool call's arguments
// map.
type Tool[T any] interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input T) (*ToolOutput, error)
}

// ToolOutput is the outcome of a tool execution. Exactly one of Result and
// Err is meaningful; use the Output and Failf constructors.
type ToolOutput struct {
	Result any
	Err    string
}

// Output is a convenience constructor for a successful tool output.
func Output(result any) *ToolOutput { return &ToolOutput{Result: result} }

// Failf is a convenience constructor for a failed tool output.
func Failf(format string, args ...any) *ToolOutput {
	return &ToolOutput{Err: fmt.Sprintf(format, args...)}
}

// ToolSchema describes one registered tool, including the JSON Schema of
// its arguments. Callers typically embed these into an agent's system
// prompt so the server knows what it may call.
type ToolSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema schema.InputSchema `json:"input_schema"`
}

// toolEntry is the type-erased wrapper stored in the registry.
type toolEntry struct {
	schema  ToolSchema
	execute func(ctx context.Context, call ToolCallInfo) *ToolResultPart
}

// ToolRegistry maps tool names to client-side handlers. It is
// concurrent-safe and preserves registration order.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]*toolEntry
	order []string
}

// NewToolRegistry creates a new empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]*toolEntry)}
}

// RegisterTool registers a generic tool. The argument type T is used to
// auto-generate a JSON Schema from its struct tags.
func RegisterTool[T any](r *ToolRegistry, tool Tool[T]) {
	entry := &toolEntry{
		schema: ToolSchema{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: schema.Generate[T](),
		},
		execute: func(ctx context.Context, call ToolCallInfo) *ToolResultPart {
			raw, err := json.Marshal(call.Arguments)
			if err != nil {
				return ToolError(call.ID, fmt.Sprintf("invalid arguments: %s", err))
			}
			var input T
			if err := json.Unmarshal(raw, &input); err != nil {
				return ToolError(call.ID, fmt.Sprintf("invalid arguments: %s", err))
			}
			out, execErr := tool.Execute(ctx, input)
			return toResultPart(call.ID, out, execErr)
		},
	}
	r.add(entry)
}

// RegisterFunc registers a raw handler that receives the arguments map
// as-is. Used for dynamic tools that don't fit the generic Tool interface.
func (r *ToolRegistry) RegisterFunc(name, description string, fn func(ctx context.Context, args map[string]any) (*ToolOutput, error)) {
	entry := &toolEntry{
		schema: ToolSchema{
			Name:        name,
			Description: description,
			InputSchema: schema.InputSchema{Type: "object"},
		},
		execute: func(ctx context.Context, call ToolCallInfo) *ToolResultPart {
			out, fnErr := fn(ctx, call.Arguments)
			return toResultPart(call.ID, out, fnErr)
		},
	}
	r.add(entry)
}

func (r *ToolRegistry) add(entry *toolEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[entry.schema.Name]; !exists {
		r.order = append(r.order, entry.schema.Name)
	}
	r.tools[entry.schema.Name] = entry
}

// toResultPart converts a handler outcome into a tool_result part. Handler
// errors become error-bearing parts so one failing tool never aborts the
// turn.
func toResultPart(callID string, out *ToolOutput, err error) *ToolResultPart {
	if err != nil {
		return ToolError(callID, err.Error())
	}
	if out == nil {
		return ToolResult(callID, nil)
	}
	if out.Err != "" {
		return ToolError(callID, out.Err)
	}
	return ToolResult(callID, out.Result)
}

// Dispatch runs the handler registered for the call's name and returns its
// tool_result part. An unrecognized name yields an error part rather than
// an error, so the server round trip always completes.
func (r *ToolRegistry) Dispatch(ctx context.Context, call ToolCallInfo) *ToolResultPart {
	r.mu.RLock()
	entry, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		return ToolError(call.ID, "Unknown tool: "+call.Name)
	}
	return entry.execute(ctx, call)
}

// Schemas returns the registered tool descriptions in registration order.
func (r *ToolRegistry) Schemas() []ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make([]ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].schema)
	}
	return schemas
}

// Names returns the names of all registered tools in registration order.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// ToolRules restricts which tool names a turn may dispatch, using glob
// patterns (doublestar syntax, e.g. "weather_*"). Deny patterns win over
// allow patterns; an empty allow list permits everything not denied.
type ToolRules struct {
	Allow []string
	Deny  []string
}

// Allowed reports whether a tool name passes the rules.
func (r ToolRules) Allowed(name string) bool {
	for _, p := range r.Deny {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return false
		}
	}
	if len(r.Allow) == 0 {
		return true
	}
	for _, p := range r.Allow {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

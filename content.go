package everruns

import (
	"encoding/json"
	"fmt"
)

// ContentPart is a tagged union over message content. Each variant carries
// only the fields valid for its tag, so an inconsistent part (for example a
// tool_result with both result and error) cannot be constructed through the
// exported constructors.
type ContentPart interface {
	// PartType returns the wire tag: text, image, image_file, tool_call or
	// tool_result.
	PartType() string
}

// TextPart is plain text content.
type TextPart struct {
	Text string
}

func (*TextPart) PartType() string { return "text" }

// Text builds a text content part.
func Text(text string) *TextPart { return &TextPart{Text: text} }

func (p *TextPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{"text", p.Text})
}

// ImagePart is an inline image, referenced by URL or carried as base64.
type ImagePart struct {
	URL    string
	Base64 string
}

func (*ImagePart) PartType() string { return "image" }

func (p *ImagePart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		URL    string `json:"url,omitempty"`
		Base64 string `json:"base64,omitempty"`
	}{"image", p.URL, p.Base64})
}

// ImageFilePart references a previously uploaded image.
type ImageFilePart struct {
	ImageID string
}

func (*ImageFilePart) PartType() string { return "image_file" }

func (p *ImageFilePart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		ImageID string `json:"image_id"`
	}{"image_file", p.ImageID})
}

// ToolCallPart is a server-issued request for the client to run a tool.
type ToolCallPart struct {
	ID        string
	Name      string
	Arguments map[string]any
}

func (*ToolCallPart) PartType() string { return "tool_call" }

func (p *ToolCallPart) MarshalJSON() ([]byte, error) {
	args := p.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return json.Marshal(struct {
		Type      string         `json:"type"`
		ID        string         `json:"id"`
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}{"tool_call", p.ID, p.Name, args})
}

// ToolResultPart reports the outcome of one tool call. Exactly one of
// Result and Error is set; use the ToolResult and ToolError constructors.
type ToolResultPart struct {
	ToolCallID string
	Result     any
	Error      string
}

func (*ToolResultPart) PartType() string { return "tool_result" }

// ToolResult builds a successful tool result for the given call ID.
func ToolResult(toolCallID string, result any) *ToolResultPart {
	return &ToolResultPart{ToolCallID: toolCallID, Result: result}
}

// ToolError builds a failed tool result for the given call ID.
func ToolError(toolCallID, message string) *ToolResultPart {
	return &ToolResultPart{ToolCallID: toolCallID, Error: message}
}

func (p *ToolResultPart) MarshalJSON() ([]byte, error) {
	if p.Error != "" && p.Result != nil {
		return nil, fmt.Errorf("everruns: tool_result %s carries both result and error", p.ToolCallID)
	}
	if p.Error != "" {
		return json.Marshal(struct {
			Type       string `json:"type"`
			ToolCallID string `json:"tool_call_id"`
			Error      string `json:"error"`
		}{"tool_result", p.ToolCallID, p.Error})
	}
	return json.Marshal(struct {
		Type       string `json:"type"`
		ToolCallID string `json:"tool_call_id"`
		Result     any    `json:"result"`
	}{"tool_result", p.ToolCallID, p.Result})
}

// Parts is an ordered list of content parts that decodes each element by
// its type tag.
type Parts []ContentPart

func (p *Parts) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	parts := make(Parts, 0, len(raws))
	for i, raw := range raws {
		part, err := decodePart(raw)
		if err != nil {
			return fmt.Errorf("content part %d: %w", i, err)
		}
		parts = append(parts, part)
	}
	*p = parts
	return nil
}

func decodePart(raw json.RawMessage) (ContentPart, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case "text":
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &TextPart{Text: v.Text}, nil
	case "image":
		var v struct {
			URL    string `json:"url"`
			Base64 string `json:"base64"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ImagePart{URL: v.URL, Base64: v.Base64}, nil
	case "image_file":
		var v struct {
			ImageID string `json:"image_id"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ImageFilePart{ImageID: v.ImageID}, nil
	case "tool_call":
		var v struct {
			ID        string         `json:"id"`
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ToolCallPart{ID: v.ID, Name: v.Name, Arguments: v.Arguments}, nil
	case "tool_result":
		var v struct {
			ToolCallID string `json:"tool_call_id"`
			Result     any    `json:"result"`
			Error      string `json:"error"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ToolResultPart{ToolCallID: v.ToolCallID, Result: v.Result, Error: v.Error}, nil
	}
	return nil, fmt.Errorf("unknown content part type %q", env.Type)
}

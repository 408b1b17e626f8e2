package everruns

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParts_DecodeTaggedUnion(t *testing.T) {
	raw := `[
		{"type":"text","text":"hello"},
		{"type":"image","url":"https://example.com/x.png"},
		{"type":"image_file","image_id":"img_1"},
		{"type":"tool_call","id":"c1","name":"get_weather","arguments":{"city":"Paris"}},
		{"type":"tool_result","tool_call_id":"c1","result":{"temp":18}}
	]`

	var parts Parts
	require.NoError(t, json.Unmarshal([]byte(raw), &parts))
	require.Len(t, parts, 5)

	text, ok := parts[0].(*TextPart)
	require.True(t, ok)
	assert.Equal(t, "hello", text.Text)

	call, ok := parts[3].(*ToolCallPart)
	require.True(t, ok)
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "get_weather", call.Name)
	assert.Equal(t, "Paris", call.Arguments["city"])

	result, ok := parts[4].(*ToolResultPart)
	require.True(t, ok)
	assert.Equal(t, "c1", result.ToolCallID)
	assert.Empty(t, result.Error)
}

func TestParts_UnknownTag(t *testing.T) {
	var parts Parts
	err := json.Unmarshal([]byte(`[{"type":"hologram"}]`), &parts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hologram")
}

func TestToolResultPart_ExactlyOneOfResultError(t *testing.T) {
	ok := ToolResult("c1", "fine")
	raw, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tool_result","tool_call_id":"c1","result":"fine"}`, string(raw))

	fail := ToolError("c2", "no such city")
	raw, err = json.Marshal(fail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tool_result","tool_call_id":"c2","error":"no such city"}`, string(raw))

	// A part holding both fields cannot be serialized.
	bad := &ToolResultPart{ToolCallID: "c3", Result: "x", Error: "y"}
	_, err = json.Marshal(bad)
	require.Error(t, err)
}

func TestToolCallPart_NilArgumentsMarshalAsEmptyObject(t *testing.T) {
	raw, err := json.Marshal(&ToolCallPart{ID: "c1", Name: "noop"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tool_call","id":"c1","name":"noop","arguments":{}}`, string(raw))
}

func TestTextPart_RoundTrip(t *testing.T) {
	raw, err := json.Marshal(Parts{Text("hi")})
	require.NoError(t, err)

	var back Parts
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, 1)
	assert.Equal(t, Text("hi"), back[0])
}

func TestMessage_DecodeWithContent(t *testing.T) {
	raw := `{
		"id":"m1","session_id":"s1","sequence":7,"role":"agent",
		"content":[{"type":"text","text":"answer"}],
		"thinking":"pondering","created_at":"2026-02-01T10:00:00Z"
	}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, int64(7), msg.Sequence)
	assert.Equal(t, RoleAgent, msg.Role)
	assert.Equal(t, "pondering", msg.Thinking)
	require.Len(t, msg.Content, 1)
	assert.Equal(t, "text", msg.Content[0].PartType())
}

func TestNewAgentID_Format(t *testing.T) {
	id := NewAgentID()
	assert.True(t, validAgentID(id), "generated ID should satisfy the format: %s", id)
	assert.NotEqual(t, id, NewAgentID())

	assert.False(t, validAgentID("agent_short"))
	assert.False(t, validAgentID("sess_a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8"))
	assert.False(t, validAgentID("agent_zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"))
}

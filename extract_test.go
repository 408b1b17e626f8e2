package everruns

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToolCalls_SingleCall(t *testing.T) {
	data := json.RawMessage(`{"message":{"content":[
		{"type":"tool_call","id":"c1","name":"get_weather","arguments":{"city":"Paris"}}
	]}}`)

	calls := ExtractToolCalls(data)
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].ID)
	assert.Equal(t, "get_weather", calls[0].Name)
	assert.Equal(t, map[string]any{"city": "Paris"}, calls[0].Arguments)
}

func TestExtractToolCalls_SkipsIncompleteEntries(t *testing.T) {
	data := json.RawMessage(`{"message":{"content":[
		{"type":"tool_call","name":"missing_id","arguments":{}},
		{"type":"tool_call","id":"c2","arguments":{}},
		{"type":"tool_call","id":"c3","name":"ok"},
		{"type":"text","text":"not a call"}
	]}}`)

	calls := ExtractToolCalls(data)
	require.Len(t, calls, 1)
	assert.Equal(t, "c3", calls[0].ID)
	assert.Equal(t, "ok", calls[0].Name)
	assert.NotNil(t, calls[0].Arguments, "arguments default to an empty map")
	assert.Empty(t, calls[0].Arguments)
}

func TestExtractToolCalls_NoMessageKey(t *testing.T) {
	assert.Empty(t, ExtractToolCalls(json.RawMessage(`{"turn_id":"t1"}`)))
}

func TestExtractToolCalls_ContentNotASequence(t *testing.T) {
	assert.Empty(t, ExtractToolCalls(json.RawMessage(`{"message":{"content":"oops"}}`)))
	assert.Empty(t, ExtractToolCalls(json.RawMessage(`not json`)))
}

func TestExtractToolCalls_Deterministic(t *testing.T) {
	data := json.RawMessage(`{"message":{"content":[
		{"type":"tool_call","id":"a","name":"one"},
		{"type":"tool_call","id":"b","name":"two"}
	]}}`)

	first := ExtractToolCalls(data)
	second := ExtractToolCalls(data)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].ID)
	assert.Equal(t, "b", first[1].ID)
}

func TestExtractText(t *testing.T) {
	data := json.RawMessage(`{"message":{"content":[
		{"type":"text","text":"line one"},
		{"type":"tool_call","id":"c1","name":"x"},
		{"type":"text","text":"line two"}
	]}}`)

	assert.Equal(t, "line one\nline two", ExtractText(data))
	assert.Empty(t, ExtractText(json.RawMessage(`{}`)))
}

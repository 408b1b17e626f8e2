package everruns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// turnFixture fakes the server side of a turn: it records message posts,
// signals the SSE script when tool results arrive, and serves session
// usage for the cost summary.
type turnFixture struct {
	mu      sync.Mutex
	posts   []map[string]any
	toolRes chan struct{}
}

func newTurnFixture(t *testing.T, sse http.HandlerFunc) (*turnFixture, *Client) {
	t.Helper()
	f := &turnFixture{toolRes: make(chan struct{}, 4)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/orgs/org1/sessions/s1/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.posts = append(f.posts, body)
		f.mu.Unlock()
		if msg, ok := body["message"].(map[string]any); ok && msg["role"] == "tool_result" {
			f.toolRes <- struct{}{}
		}
		io.WriteString(w, `{"id":"m1","session_id":"s1","sequence":1,"role":"user","content":[{"type":"text","text":"x"}],"created_at":"t"}`)
	})
	mux.HandleFunc("GET /v1/orgs/org1/sessions/s1/sse", sse)
	mux.HandleFunc("GET /v1/orgs/org1/sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"s1","organization_id":"org1","agent_id":"a1","status":"idle",
			"created_at":"t","updated_at":"t","model_id":"claude-sonnet-4-5",
			"usage":{"input_tokens":100,"output_tokens":50,"cache_read_tokens":0}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, newTestClient(t, srv)
}

func (f *turnFixture) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

// toolResultParts returns the content of the nth posted message.
func (f *turnFixture) content(t *testing.T, n int) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(t, len(f.posts), n)
	msg := f.posts[n]["message"].(map[string]any)
	raw := msg["content"].([]any)
	parts := make([]map[string]any, len(raw))
	for i, p := range raw {
		parts[i] = p.(map[string]any)
	}
	return parts
}

func writeSSE(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, fr := range frames {
		fmt.Fprint(w, fr)
	}
	w.(http.Flusher).Flush()
}

func TestRunTurn_TextOnly(t *testing.T) {
	f, c := newTurnFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			sseFrame("e1", EventInputMessage, `{"message":{"content":[{"type":"text","text":"Tell me a dad joke"}]}}`),
			sseFrame("e2", EventOutputMessageCompleted, `{"message":{"content":[{"type":"text","text":"I used to hate facial hair, but then it grew on me."}]}}`),
			sseFrame("e3", EventTurnCompleted, `{}`),
		)
	})

	var seen []string
	res, err := RunTurn(context.Background(), c, "s1", "Tell me a dad joke",
		WithOnEvent(func(ev *Event) { seen = append(seen, ev.Type) }))
	require.NoError(t, err)

	assert.Equal(t, TurnSucceeded, res.Status)
	assert.Equal(t, "I used to hate facial hair, but then it grew on me.", res.Text)
	assert.Empty(t, res.ToolCalls)
	assert.Equal(t, "e3", res.LastEventID)
	assert.Equal(t, 1, f.postCount(), "text-only turn posts exactly one message")
	assert.Equal(t, []string{EventInputMessage, EventOutputMessageCompleted, EventTurnCompleted}, seen)

	require.NotNil(t, res.Usage)
	assert.Equal(t, int64(100), res.Usage.InputTokens)
	assert.True(t, res.CostUSD.Equal(decimal.RequireFromString("0.00105")),
		"cost should be 100*3/1M + 50*15/1M, got %s", res.CostUSD)
}

func TestRunTurn_ToolRoundTrip(t *testing.T) {
	var f *turnFixture
	var c *Client
	f, c = newTurnFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, sseFrame("e1", EventOutputMessageCompleted, `{"message":{"content":[
			{"type":"tool_call","id":"c1","name":"get_weather","arguments":{"city":"Paris"}},
			{"type":"tool_call","id":"c2","name":"get_weather","arguments":{"city":"Tokyo"}}
		]}}`))
		select {
		case <-f.toolRes:
		case <-time.After(5 * time.Second):
			return
		case <-r.Context().Done():
			return
		}
		writeSSE(w,
			sseFrame("e2", EventOutputMessageCompleted, `{"message":{"content":[{"type":"text","text":"Paris is cloudy, Tokyo is sunny."}]}}`),
			sseFrame("e3", EventTurnCompleted, `{}`),
		)
	})

	var cities []string
	registry := NewToolRegistry()
	registry.RegisterFunc("get_weather", "Looks up weather.", func(ctx context.Context, args map[string]any) (*ToolOutput, error) {
		city, _ := args["city"].(string)
		cities = append(cities, city)
		return Output(map[string]any{"city": city, "condition": "fine"}), nil
	})

	res, err := RunTurn(context.Background(), c, "s1", "Weather in Paris and Tokyo?",
		WithTools(registry))
	require.NoError(t, err)

	assert.Equal(t, TurnSucceeded, res.Status)
	assert.Equal(t, []string{"Paris", "Tokyo"}, cities)
	require.Len(t, res.ToolCalls, 2)
	assert.Equal(t, "c1", res.ToolCalls[0].ID)
	assert.Equal(t, "c2", res.ToolCalls[1].ID)
	assert.Equal(t, "Paris is cloudy, Tokyo is sunny.", res.Text)

	// One user message plus one batched tool_result message.
	require.Equal(t, 2, f.postCount())
	parts := f.content(t, 1)
	require.Len(t, parts, 2)
	assert.Equal(t, "c1", parts[0]["tool_call_id"])
	assert.Equal(t, "c2", parts[1]["tool_call_id"])
	result0 := parts[0]["result"].(map[string]any)
	assert.Equal(t, "Paris", result0["city"])
}

func TestRunTurn_UnknownToolAnswersWithError(t *testing.T) {
	var f *turnFixture
	var c *Client
	f, c = newTurnFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, sseFrame("e1", EventOutputMessageCompleted, `{"message":{"content":[
			{"type":"tool_call","id":"c1","name":"get_weather","arguments":{}}
		]}}`))
		select {
		case <-f.toolRes:
		case <-time.After(5 * time.Second):
			return
		case <-r.Context().Done():
			return
		}
		writeSSE(w, sseFrame("e2", EventTurnCompleted, `{}`))
	})

	res, err := RunTurn(context.Background(), c, "s1", "weather please")
	require.NoError(t, err)
	assert.Equal(t, TurnSucceeded, res.Status)

	parts := f.content(t, 1)
	require.Len(t, parts, 1)
	assert.Equal(t, "c1", parts[0]["tool_call_id"])
	assert.Equal(t, "Unknown tool: get_weather", parts[0]["error"])
}

func TestRunTurn_DeniedToolAnswersWithError(t *testing.T) {
	var f *turnFixture
	var c *Client
	f, c = newTurnFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, sseFrame("e1", EventOutputMessageCompleted, `{"message":{"content":[
			{"type":"tool_call","id":"c1","name":"drop_tables","arguments":{}}
		]}}`))
		select {
		case <-f.toolRes:
		case <-time.After(5 * time.Second):
			return
		case <-r.Context().Done():
			return
		}
		writeSSE(w, sseFrame("e2", EventTurnCompleted, `{}`))
	})

	registry := NewToolRegistry()
	registry.RegisterFunc("drop_tables", "Dangerous.", func(ctx context.Context, args map[string]any) (*ToolOutput, error) {
		t.Fatal("denied tool must never execute")
		return nil, nil
	})

	res, err := RunTurn(context.Background(), c, "s1", "clean up",
		WithTools(registry),
		WithToolRules(ToolRules{Deny: []string{"drop_*"}}))
	require.NoError(t, err)
	assert.Equal(t, TurnSucceeded, res.Status)

	parts := f.content(t, 1)
	assert.Equal(t, "Tool not permitted: drop_tables", parts[0]["error"])
}

func TestRunTurn_FailedTurn(t *testing.T) {
	_, c := newTurnFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, sseFrame("e1", EventTurnFailed, `{"reason":"model_error"}`))
	})

	res, err := RunTurn(context.Background(), c, "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, TurnFailed, res.Status)
}

func TestRunTurn_InterruptedStream(t *testing.T) {
	_, c := newTurnFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, sseFrame("e1", EventInputMessage, `{}`))
		// Connection drops before any terminal event.
	})

	res, err := RunTurn(context.Background(), c, "s1", "hello")
	require.ErrorIs(t, err, ErrTurnInterrupted)
	require.NotNil(t, res)
	assert.Equal(t, "e1", res.LastEventID, "partial result carries the resume cursor")
}

func TestRunTurn_SendFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"code":"not_found","message":"no session"}}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := RunTurn(context.Background(), c, "missing", "hello")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

package everruns

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/everruns/everruns-sdk-go/internal/pricing"
)

// TurnStatus is the outcome of one turn.
type TurnStatus string

const (
	TurnSucceeded TurnStatus = "completed"
	TurnFailed    TurnStatus = "failed"
)

// TurnResult summarizes one completed turn.
type TurnResult struct {
	Status TurnStatus
	// Text is the assistant's output, concatenated across completed
	// messages that carried no tool calls.
	Text string
	// ToolCalls lists every tool invocation dispatched during the turn in
	// arrival order.
	ToolCalls []ToolCallInfo
	// LastEventID is the stream cursor after the turn; pass it to
	// WithSinceID to resume without replaying this turn's events.
	LastEventID string
	// Usage and CostUSD reflect the session counters after the turn.
	// CostUSD is zero when the session's model is not in the pricing table.
	Usage   *TokenUsage
	CostUSD decimal.Decimal
}

// TurnOption configures RunTurn.
type TurnOption func(*turnOptions)

type turnOptions struct {
	tools      *ToolRegistry
	rules      ToolRules
	controls   *Controls
	streamOpts []StreamOption
	onEvent    func(*Event)
}

// WithTools supplies the registry used to dispatch tool calls. Without it,
// every tool call is answered with an "Unknown tool" error result.
func WithTools(r *ToolRegistry) TurnOption {
	return func(o *turnOptions) { o.tools = r }
}

// WithToolRules restricts which tool names may be dispatched; calls that
// fail the rules are answered with an error result.
func WithToolRules(rules ToolRules) TurnOption {
	return func(o *turnOptions) { o.rules = rules }
}

// WithControls attaches per-message generation overrides to the user
// message that starts the turn.
func WithControls(c *Controls) TurnOption {
	return func(o *turnOptions) { o.controls = c }
}

// WithTurnStream forwards options to the underlying event stream, e.g.
// WithSinceID to skip a previous turn's events. Deltas are excluded by
// default.
func WithTurnStream(opts ...StreamOption) TurnOption {
	return func(o *turnOptions) { o.streamOpts = append(o.streamOpts, opts...) }
}

// WithOnEvent registers an observer invoked for every event the turn
// consumes, before it is acted on.
func WithOnEvent(fn func(*Event)) TurnOption {
	return func(o *turnOptions) { o.onEvent = fn }
}

// RunTurn drives one full turn against a session: it sends the user text,
// streams events, answers tool calls through the registry (one batched
// tool_result message per completed assistant message), and returns when
// the server reports turn.completed or turn.failed.
//
// Tool handler failures and unknown tool names are converted to
// error-bearing results and never abort the turn; only transport and
// stream-connection failures do. If the stream ends before a terminal
// event, RunTurn returns ErrTurnInterrupted together with the partial
// result so the caller can resume from result.LastEventID.
func RunTurn(ctx context.Context, client *Client, sessionID, text string, opts ...TurnOption) (*TurnResult, error) {
	var o turnOptions
	for _, fn := range opts {
		fn(&o)
	}

	req := CreateMessageRequest{Message: UserText(text), Controls: o.controls}
	if _, err := client.Messages().CreateWithOptions(ctx, sessionID, req); err != nil {
		return nil, err
	}

	streamOpts := append([]StreamOption{WithoutDeltas()}, o.streamOpts...)
	stream := client.Events().Stream(ctx, sessionID, streamOpts...)
	defer stream.Close()

	res := &TurnResult{CostUSD: decimal.Zero}
	var texts []string

	for stream.Next() {
		ev := stream.Current()
		res.LastEventID = ev.ID
		if o.onEvent != nil {
			o.onEvent(ev)
		}

		switch ev.Type {
		case EventOutputMessageCompleted:
			calls := ExtractToolCalls(ev.Data)
			if len(calls) == 0 {
				if t := ExtractText(ev.Data); t != "" {
					texts = append(texts, t)
				}
				continue
			}
			// Drain the whole batch, then submit together before reading on.
			results := make([]*ToolResultPart, 0, len(calls))
			for _, call := range calls {
				res.ToolCalls = append(res.ToolCalls, call)
				results = append(results, o.dispatch(ctx, call))
			}
			if _, err := client.Messages().CreateToolResults(ctx, sessionID, results); err != nil {
				return res, err
			}

		case EventTurnCompleted:
			res.Status = TurnSucceeded
		case EventTurnFailed:
			res.Status = TurnFailed
		}

		if ev.Terminal() {
			break
		}
	}

	res.Text = strings.Join(texts, "\n")

	if err := stream.Err(); err != nil {
		return res, err
	}
	if res.Status == "" {
		return res, ErrTurnInterrupted
	}

	// Usage is best-effort: a failed session fetch doesn't fail the turn.
	if sess, err := client.Sessions().Get(ctx, sessionID); err == nil && sess.Usage != nil {
		res.Usage = sess.Usage
		res.CostUSD = pricing.Cost(sess.ModelID, pricing.Usage{
			InputTokens:     sess.Usage.InputTokens,
			OutputTokens:    sess.Usage.OutputTokens,
			CacheReadTokens: sess.Usage.CacheReadTokens,
		})
	} else if err != nil {
		client.log.Debug("session usage fetch failed", "session_id", sessionID, "error", err)
	}

	return res, nil
}

// dispatch applies the rules then the registry; every outcome is a
// tool_result part so the server never stalls on an unanswered call.
func (o *turnOptions) dispatch(ctx context.Context, call ToolCallInfo) *ToolResultPart {
	if !o.rules.Allowed(call.Name) {
		return ToolError(call.ID, "Tool not permitted: "+call.Name)
	}
	if o.tools == nil {
		return ToolError(call.ID, "Unknown tool: "+call.Name)
	}
	return o.tools.Dispatch(ctx, call)
}

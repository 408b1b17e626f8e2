// Package pricing estimates per-model token costs for session usage.
package pricing

import "github.com/shopspring/decimal"

// Usage mirrors the session token counters relevant to billing.
type Usage struct {
	InputTokens     int64
	OutputTokens    int64
	CacheReadTokens int64
}

// ModelPricing holds per-model token prices in USD per million tokens.
type ModelPricing struct {
	InputPerMTok     decimal.Decimal
	OutputPerMTok    decimal.Decimal
	CacheReadPerMTok decimal.Decimal
}

var million = decimal.NewFromInt(1_000_000)

// Cost calculates the USD cost of the given usage under this pricing.
func (p ModelPricing) Cost(u Usage) decimal.Decimal {
	cost := decimal.NewFromInt(u.InputTokens).Mul(p.InputPerMTok).Div(million)
	cost = cost.Add(decimal.NewFromInt(u.OutputTokens).Mul(p.OutputPerMTok).Div(million))
	cost = cost.Add(decimal.NewFromInt(u.CacheReadTokens).Mul(p.CacheReadPerMTok).Div(million))
	return cost
}

// Default contains built-in pricing for commonly routed models
// (USD per million tokens).
var Default = map[string]ModelPricing{
	"claude-sonnet-4-5": {
		InputPerMTok:     decimal.NewFromFloat(3),
		OutputPerMTok:    decimal.NewFromFloat(15),
		CacheReadPerMTok: decimal.NewFromFloat(0.3),
	},
	"claude-haiku-4-5": {
		InputPerMTok:     decimal.NewFromFloat(1),
		OutputPerMTok:    decimal.NewFromFloat(5),
		CacheReadPerMTok: decimal.NewFromFloat(0.1),
	},
	"gpt-4o": {
		InputPerMTok:     decimal.NewFromFloat(2.5),
		OutputPerMTok:    decimal.NewFromFloat(10),
		CacheReadPerMTok: decimal.NewFromFloat(1.25),
	},
	"gpt-4o-mini": {
		InputPerMTok:     decimal.NewFromFloat(0.15),
		OutputPerMTok:    decimal.NewFromFloat(0.6),
		CacheReadPerMTok: decimal.NewFromFloat(0.075),
	},
}

// Cost returns the USD cost of usage for a model ID, or zero when the model
// is not in the pricing table.
func Cost(modelID string, u Usage) decimal.Decimal {
	p, ok := Default[modelID]
	if !ok {
		return decimal.Zero
	}
	return p.Cost(u)
}

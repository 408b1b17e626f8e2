package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCost_KnownModel(t *testing.T) {
	u := Usage{InputTokens: 100, OutputTokens: 50}

	got := Cost("claude-sonnet-4-5", u)
	assert.True(t, got.Equal(decimal.RequireFromString("0.00105")),
		"100 in at $3/MTok plus 50 out at $15/MTok, got %s", got)
}

func TestCost_CacheReads(t *testing.T) {
	u := Usage{InputTokens: 1_000_000, OutputTokens: 0, CacheReadTokens: 1_000_000}

	got := Cost("claude-sonnet-4-5", u)
	assert.True(t, got.Equal(decimal.RequireFromString("3.3")),
		"one MTok of input and one MTok of cache reads, got %s", got)
}

func TestCost_UnknownModelIsZero(t *testing.T) {
	u := Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.True(t, Cost("some-fine-tune", u).IsZero())
}

func TestCost_ExactDecimalArithmetic(t *testing.T) {
	// 1 token at $0.15/MTok must not collapse to zero or pick up float noise.
	got := Cost("gpt-4o-mini", Usage{InputTokens: 1})
	assert.True(t, got.Equal(decimal.RequireFromString("0.00000015")), "got %s", got)
}

func TestCost_ZeroUsage(t *testing.T) {
	assert.True(t, Cost("gpt-4o", Usage{}).IsZero())
}

// Package usage normalizes the token-usage reporting formats of LLM providers
// into one canonical record. It handles plain JSON response bodies as well as
// SSE streams, and extracts the model name alongside the token counts.
package usage

// TokenUsage is the canonical token-count record produced by extraction.
// A record is constructed fresh per extraction call and never mutated after
// it is returned.
type TokenUsage struct {
	// PromptCacheMissTokens is the number of input tokens not served from a
	// provider-side cache.
	PromptCacheMissTokens int `json:"promptCacheMissTokens"`

	// PromptCacheHitTokens is the number of input tokens served from a
	// provider-side cache at a discounted rate.
	PromptCacheHitTokens int `json:"promptCacheHitTokens"`

	// PromptCacheWriteTokens is the number of input tokens newly written into
	// a provider-side cache during this request.
	PromptCacheWriteTokens int `json:"promptCacheWriteTokens"`

	// ReasoningTokens is the number of output tokens spent on internal
	// reasoning, as reported by the provider.
	ReasoningTokens int `json:"reasoningTokens"`

	// CompletionTokens is the number of visible completion tokens
	// (total output minus reasoning).
	CompletionTokens int `json:"completionTokens"`

	// TotalInputTokens is always PromptCacheMissTokens + PromptCacheHitTokens
	// + PromptCacheWriteTokens. Cache-write tokens count toward total input
	// because they were newly read from the source text even though they were
	// cached afterward.
	TotalInputTokens int `json:"totalInputTokens"`

	// TotalOutputTokens is always ReasoningTokens + CompletionTokens.
	TotalOutputTokens int `json:"totalOutputTokens"`

	// Model is the best-effort model identifier extracted from the same
	// payload, empty when the payload does not carry one.
	Model string `json:"model,omitempty"`
}

// finalize recomputes the derived totals from the individual counts.
// Called once per extraction, after the shape-specific fields are set.
func (u *TokenUsage) finalize() {
	u.TotalOutputTokens = u.ReasoningTokens + u.CompletionTokens
	u.TotalInputTokens = u.PromptCacheMissTokens + u.PromptCacheHitTokens + u.PromptCacheWriteTokens
}

// empty reports whether the record carries no token counts at all.
// Partially-populated records are not empty; only the total absence of both
// input and output tokens counts as empty.
func (u *TokenUsage) empty() bool {
	return u.TotalInputTokens == 0 && u.TotalOutputTokens == 0
}

// accumulator folds per-event usage records from an SSE stream into a single
// result. SSE events report cumulative totals rather than deltas, so each
// numeric field is folded with max, never summed. The model is taken from the
// first event that reports one.
type accumulator struct {
	usage    TokenUsage
	sawUsage bool
}

// merge folds one event's extracted usage into the accumulator.
func (a *accumulator) merge(u *TokenUsage) {
	if u == nil {
		return
	}
	a.sawUsage = true
	a.usage.PromptCacheMissTokens = max(a.usage.PromptCacheMissTokens, u.PromptCacheMissTokens)
	a.usage.PromptCacheHitTokens = max(a.usage.PromptCacheHitTokens, u.PromptCacheHitTokens)
	a.usage.PromptCacheWriteTokens = max(a.usage.PromptCacheWriteTokens, u.PromptCacheWriteTokens)
	a.usage.ReasoningTokens = max(a.usage.ReasoningTokens, u.ReasoningTokens)
	a.usage.CompletionTokens = max(a.usage.CompletionTokens, u.CompletionTokens)
	a.usage.TotalInputTokens = max(a.usage.TotalInputTokens, u.TotalInputTokens)
	a.usage.TotalOutputTokens = max(a.usage.TotalOutputTokens, u.TotalOutputTokens)
	if a.usage.Model == "" && u.Model != "" {
		a.usage.Model = u.Model
	}
}

// result returns the folded record.
func (a *accumulator) result() *TokenUsage {
	u := a.usage
	return &u
}

package usage

import (
	"strings"

	"github.com/tidwall/gjson"
)

// payloadShape pairs a matcher predicate with the extractor for one provider
// schema. Shapes are tried in the fixed order of shapeMatchers; the first
// matching shape wins. The order matters: some fields (model, usage) appear
// in several schemas, and the Mistral special case nests inside the generic
// "has usage" branch.
type payloadShape struct {
	name    string
	match   func(body gjson.Result) bool
	extract func(body gjson.Result, usage *TokenUsage)
}

// shapeMatchers is the ordered shape-dispatch table. Adding support for a new
// provider schema means adding one entry in the right priority position.
var shapeMatchers = []payloadShape{
	{
		// Streaming "message start" event with usage nested under message.
		name:    "message_usage",
		match:   func(body gjson.Result) bool { return body.Get("message.usage").Exists() },
		extract: extractMessageUsage,
	},
	{
		// camelCase SDK wrapper shape with provider metadata namespaces.
		name: "sdk_wrapper",
		match: func(body gjson.Result) bool {
			return body.Get("usage.promptTokens").Exists() && body.Get("usage.completionTokens").Exists()
		},
		extract: extractSDKWrapper,
	},
	{
		// Generic object with a top-level usage field. Covers OpenAI and
		// Anthropic snake_case responses plus the Mistral special case.
		name:    "generic_usage",
		match:   func(body gjson.Result) bool { return body.Get("usage").Exists() },
		extract: extractGenericUsage,
	},
	{
		// Gemini/Vertex usageMetadata, either flat token counts or an
		// Anthropic-style breakdown.
		name:    "usage_metadata",
		match:   func(body gjson.Result) bool { return body.Get("usageMetadata").Exists() },
		extract: extractUsageMetadata,
	},
	{
		// usage_object variant seen in some proxy payloads.
		name:    "usage_object",
		match:   func(body gjson.Result) bool { return body.Get("usage_object").Exists() },
		extract: extractUsageObject,
	},
	{
		// Flat Google AI Studio shape with counts at the top level.
		name:    "flat_token_counts",
		match:   func(body gjson.Result) bool { return body.Get("promptTokenCount").Exists() },
		extract: extractFlatCounts,
	},
}

// extractObject runs the shape dispatch over a parsed payload and returns the
// normalized record. It never fails: a payload matching no shape yields an
// all-zero record, which the entry points in extract.go reject.
func extractObject(body gjson.Result) *TokenUsage {
	usage := &TokenUsage{}

	for _, shape := range shapeMatchers {
		if shape.match(body) {
			shape.extract(body, usage)
			break
		}
	}

	// Model extraction is independent of the usage shape. The message_usage
	// extractor may already have found a more specific one; never overwrite.
	if usage.Model == "" {
		usage.Model = body.Get("model").String()
	}

	usage.finalize()
	return usage
}

// firstInt returns the integer value of the first path that exists in body,
// or 0 when none do.
func firstInt(body gjson.Result, paths ...string) int {
	for _, path := range paths {
		if v := body.Get(path); v.Exists() {
			return int(v.Int())
		}
	}
	return 0
}

// extractMessageUsage handles the nested streaming message-start event shape.
func extractMessageUsage(body gjson.Result, usage *TokenUsage) {
	mu := body.Get("message.usage")

	usage.PromptCacheMissTokens = firstInt(mu, "input_tokens", "prompt_tokens")
	usage.PromptCacheHitTokens = firstInt(mu, "cache_read_input_tokens", "cache_read_tokens")
	usage.PromptCacheWriteTokens = firstInt(mu, "cache_creation_input_tokens", "cache_write_tokens")
	usage.CompletionTokens = firstInt(mu, "completion_tokens", "output_tokens")

	// This shape carries the model either at the top level or on the message.
	if m := body.Get("model"); m.Exists() {
		usage.Model = m.String()
	} else {
		usage.Model = body.Get("message.model").String()
	}
}

// extractSDKWrapper handles the camelCase SDK wrapper shape. Prompt and
// completion counts live on usage; cache and reasoning detail lives under
// providerMetadata in mutually exclusive provider namespaces.
func extractSDKWrapper(body gjson.Result, usage *TokenUsage) {
	promptTokens := int(body.Get("usage.promptTokens").Int())
	completionTokens := int(body.Get("usage.completionTokens").Int())

	var cachedTokens, reasoningTokens int
	if openai := body.Get("providerMetadata.openai"); openai.Exists() {
		cachedTokens = int(openai.Get("cachedPromptTokens").Int())
		reasoningTokens = int(openai.Get("reasoningTokens").Int())
	} else if anthropic := body.Get("providerMetadata.anthropic"); anthropic.Exists() {
		cachedTokens = int(anthropic.Get("cacheReadInputTokens").Int())
		usage.PromptCacheWriteTokens = int(anthropic.Get("cacheCreationInputTokens").Int())
	}

	usage.PromptCacheHitTokens = cachedTokens
	usage.PromptCacheMissTokens = max(0, promptTokens-cachedTokens)
	usage.ReasoningTokens = reasoningTokens
	usage.CompletionTokens = max(0, completionTokens-reasoningTokens)
}

// extractGenericUsage handles a top-level usage object: Mistral's flat
// camelCase counts when the model says so, otherwise OpenAI/Anthropic
// snake_case fields.
func extractGenericUsage(body gjson.Result, usage *TokenUsage) {
	u := body.Get("usage")

	// Mistral never reports cache or reasoning detail.
	if strings.HasPrefix(body.Get("model").String(), "mistral-") {
		usage.PromptCacheMissTokens = int(u.Get("promptTokens").Int())
		usage.CompletionTokens = int(u.Get("completionTokens").Int())
		return
	}

	promptTokens := firstInt(u, "input_tokens", "prompt_tokens")
	usage.PromptCacheMissTokens = promptTokens

	usage.ReasoningTokens = firstInt(u,
		"completion_tokens_details.reasoning_tokens",
		"completion_tokens_details.reasoningTokens",
		"reasoningTokens")

	// The reported completion count includes reasoning tokens; decompose.
	usage.CompletionTokens = firstInt(u, "completion_tokens", "output_tokens")
	if usage.ReasoningTokens > 0 && usage.CompletionTokens > 0 {
		usage.CompletionTokens -= usage.ReasoningTokens
	}

	// prompt_tokens_details.cached_tokens is authoritative when present: the
	// prompt total includes cached tokens, so the cache-miss count must be
	// recomputed from it.
	if cached := u.Get("prompt_tokens_details.cached_tokens"); cached.Exists() {
		usage.PromptCacheHitTokens = int(cached.Int())
		usage.PromptCacheMissTokens = max(0, promptTokens-usage.PromptCacheHitTokens)
	} else {
		usage.PromptCacheHitTokens = firstInt(u, "cache_read_input_tokens", "cache_read_tokens")
	}

	usage.PromptCacheWriteTokens = firstInt(u, "cache_creation_input_tokens", "cache_write_tokens")
}

// extractUsageMetadata handles the usageMetadata field: flat Gemini counts
// when both token-count fields are present, Anthropic-style otherwise.
func extractUsageMetadata(body gjson.Result, usage *TokenUsage) {
	md := body.Get("usageMetadata")

	if md.Get("promptTokenCount").Exists() && md.Get("candidatesTokenCount").Exists() {
		usage.PromptCacheMissTokens = int(md.Get("promptTokenCount").Int())
		usage.CompletionTokens = int(md.Get("candidatesTokenCount").Int())
		return
	}

	usage.PromptCacheMissTokens = int(md.Get("input_tokens").Int())
	usage.CompletionTokens = int(md.Get("output_tokens").Int())
	usage.PromptCacheHitTokens = int(md.Get("cache_read_input_tokens").Int())
	usage.PromptCacheWriteTokens = int(md.Get("cache_creation_input_tokens").Int())
}

// extractUsageObject handles the usage_object shape. Field semantics match
// the generic snake_case path, except reasoning detection only checks the
// camelCase reasoningTokens sub-field.
func extractUsageObject(body gjson.Result, usage *TokenUsage) {
	u := body.Get("usage_object")

	promptTokens := firstInt(u, "input_tokens", "prompt_tokens")
	usage.PromptCacheMissTokens = promptTokens

	usage.ReasoningTokens = int(u.Get("reasoningTokens").Int())

	usage.CompletionTokens = firstInt(u, "completion_tokens", "output_tokens")
	if usage.ReasoningTokens > 0 && usage.CompletionTokens > 0 {
		usage.CompletionTokens -= usage.ReasoningTokens
	}

	if cached := u.Get("prompt_tokens_details.cached_tokens"); cached.Exists() {
		usage.PromptCacheHitTokens = int(cached.Int())
		usage.PromptCacheMissTokens = max(0, promptTokens-usage.PromptCacheHitTokens)
	} else {
		usage.PromptCacheHitTokens = firstInt(u, "cache_read_input_tokens", "cache_read_tokens")
	}

	usage.PromptCacheWriteTokens = firstInt(u, "cache_creation_input_tokens", "cache_write_tokens")
}

// extractFlatCounts handles top-level Google AI Studio token counts.
func extractFlatCounts(body gjson.Result, usage *TokenUsage) {
	usage.PromptCacheMissTokens = int(body.Get("promptTokenCount").Int())
	usage.CompletionTokens = int(body.Get("candidatesTokenCount").Int())
}

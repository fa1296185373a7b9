package usage

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// looksLikeSSE sniffs whether raw response text is an SSE stream. This is
// best-effort content detection, not a strict protocol check: providers
// disagree on framing details, so any of the usual tells is enough.
func looksLikeSSE(text string) bool {
	if strings.Contains(text, dataPrefix) &&
		(strings.Contains(text, "\n\n") || strings.Contains(text, "event:")) {
		return true
	}
	if strings.Contains(text, dataPrefix+doneSentinel) {
		return true
	}

	// A lone data:-prefixed JSON object still counts when its payload looks
	// like a completion chunk (a chat-completion id or a model field).
	for _, payload := range dataPayloads(text) {
		if !strings.HasPrefix(payload, "{") {
			continue
		}
		parsed := gjson.Parse(payload)
		if strings.HasPrefix(parsed.Get("id").String(), "chatcmpl") {
			return true
		}
		if parsed.Get("model").Exists() {
			return true
		}
	}
	return false
}

// ExtractFromSSE extracts usage from raw SSE stream text. Each event's data
// payload is parsed independently; events that fail to parse are expected
// streaming noise and are skipped. Usage-bearing events report cumulative
// totals, so the per-field running maximum across events is the final value.
func ExtractFromSSE(text string) (*TokenUsage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newExtractionError("response body is empty")
	}

	// An explicit error frame anywhere in the stream fails the whole
	// extraction regardless of any usage reported before it.
	if strings.Contains(text, "event: error") ||
		strings.Contains(text, `"type":"error"`) ||
		strings.Contains(text, `"type": "error"`) {
		return nil, newExtractionError("error event detected in streaming response")
	}

	acc := &accumulator{}
	for _, payload := range dataPayloads(text) {
		if payload == doneSentinel {
			continue
		}
		if !gjson.Valid(payload) {
			continue
		}
		event := gjson.Parse(payload)
		if !event.Get("message.usage").Exists() &&
			!event.Get("usage").Exists() &&
			!event.Get("usageMetadata").Exists() {
			continue
		}
		acc.merge(extractObject(event))
	}

	usage := acc.result()
	if usage.empty() {
		return nil, wrapExtractionError("no token usage information found in streaming response", ErrNoUsage)
	}
	return usage, nil
}

// dataPayloads splits SSE text into events and returns each event's data
// payload. The primary split is the blank-line event boundary; when that
// yields at most one event but the text plainly holds several data lines,
// it re-splits on the data prefix itself, tolerating providers that omit
// blank-line separators.
func dataPayloads(text string) []string {
	events := strings.Split(text, "\n\n")
	if len(events) <= 1 && strings.Count(text, dataPrefix) > 1 {
		var payloads []string
		for _, part := range strings.Split(text, dataPrefix)[1:] {
			if i := strings.IndexByte(part, '\n'); i >= 0 {
				part = part[:i]
			}
			if part = strings.TrimSpace(part); part != "" {
				payloads = append(payloads, part)
			}
		}
		return payloads
	}

	var payloads []string
	for _, event := range events {
		for _, line := range strings.Split(event, "\n") {
			line = strings.TrimSpace(line)
			if after, ok := strings.CutPrefix(line, dataPrefix); ok {
				if after = strings.TrimSpace(after); after != "" {
					payloads = append(payloads, after)
				}
			}
		}
	}
	return payloads
}

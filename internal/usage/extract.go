package usage

import (
	"bytes"
	"context"
	"io"

	"github.com/tidwall/gjson"
)

// Extract is the unified entry point. It accepts a raw response body of any
// supported form: a JSON object, or SSE stream text. Bodies that sniff as SSE
// go through the streaming extractor; everything else is parsed as a single
// JSON document. All failures surface as *ExtractionError.
func Extract(body []byte) (*TokenUsage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newExtractionError("response body is empty")
	}

	text := string(body)
	if looksLikeSSE(text) {
		return ExtractFromSSE(text)
	}
	return ExtractFromJSON(body)
}

// ExtractFromJSON extracts usage from a single JSON response body. A body
// that yields zero input tokens and zero output tokens is a failure: an
// empty or usage-less payload must not silently be treated as zero-cost.
func ExtractFromJSON(body []byte) (*TokenUsage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newExtractionError("response body is empty")
	}
	if !gjson.ValidBytes(body) {
		return nil, newExtractionError("response body is not valid JSON")
	}

	usage := extractObject(gjson.ParseBytes(body))
	if usage.empty() {
		return nil, wrapExtractionError("no token usage information found in response", ErrNoUsage)
	}
	return usage, nil
}

// ExtractFromStream reads an open byte stream to exhaustion, buffering every
// chunk, then extracts usage from the decoded text. There is no partial or
// incremental result; the surrounding transport layer owns timeout and retry
// policy. The context is checked between chunk reads so a cancelled caller
// does not block on a stalled stream longer than one read.
func ExtractFromStream(ctx context.Context, r io.Reader) (*TokenUsage, error) {
	if r == nil {
		return nil, newExtractionError("stream is nil")
	}

	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, wrapExtractionError("stream read cancelled", err)
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapExtractionError("reading stream", err)
		}
	}

	return Extract(buf.Bytes())
}

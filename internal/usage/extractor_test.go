package usage

import (
	"errors"
	"testing"
)

func TestExtractFromJSON_OpenAICachedTokens(t *testing.T) {
	body := `{
		"model": "gpt-4o-2024-11-20",
		"usage": {
			"prompt_tokens": 2568,
			"completion_tokens": 268,
			"prompt_tokens_details": {"cached_tokens": 1280}
		}
	}`

	got, err := ExtractFromJSON([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := TokenUsage{
		PromptCacheMissTokens: 1288,
		PromptCacheHitTokens:  1280,
		CompletionTokens:      268,
		TotalInputTokens:      2568,
		TotalOutputTokens:     268,
		Model:                 "gpt-4o-2024-11-20",
	}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

func TestExtractFromJSON_SDKWrapperAnthropic(t *testing.T) {
	body := `{
		"model": "claude-sonnet-4-20250514",
		"usage": {"promptTokens": 100, "completionTokens": 50, "totalTokens": 150},
		"providerMetadata": {
			"anthropic": {"cacheCreationInputTokens": 2000, "cacheReadInputTokens": 50}
		}
	}`

	got, err := ExtractFromJSON([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.PromptCacheMissTokens != 50 {
		t.Errorf("PromptCacheMissTokens = %d, want 50", got.PromptCacheMissTokens)
	}
	if got.PromptCacheHitTokens != 50 {
		t.Errorf("PromptCacheHitTokens = %d, want 50", got.PromptCacheHitTokens)
	}
	if got.PromptCacheWriteTokens != 2000 {
		t.Errorf("PromptCacheWriteTokens = %d, want 2000", got.PromptCacheWriteTokens)
	}
	if got.TotalInputTokens != 2100 {
		t.Errorf("TotalInputTokens = %d, want 2100", got.TotalInputTokens)
	}
	if got.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Model = %q", got.Model)
	}
}

func TestExtractFromJSON_ShapeDispatch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want TokenUsage
	}{
		{
			name: "message usage event shape",
			body: `{
				"message": {
					"model": "claude-opus-4",
					"usage": {
						"input_tokens": 9,
						"cache_read_input_tokens": 1200,
						"cache_creation_input_tokens": 300,
						"output_tokens": 40
					}
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens:  9,
				PromptCacheHitTokens:   1200,
				PromptCacheWriteTokens: 300,
				CompletionTokens:       40,
				TotalInputTokens:       1509,
				TotalOutputTokens:      40,
				Model:                  "claude-opus-4",
			},
		},
		{
			name: "message usage prefers top-level model",
			body: `{
				"model": "claude-sonnet-4-5",
				"message": {
					"model": "claude-old",
					"usage": {"prompt_tokens": 10, "completion_tokens": 5}
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 10,
				CompletionTokens:      5,
				TotalInputTokens:      10,
				TotalOutputTokens:     5,
				Model:                 "claude-sonnet-4-5",
			},
		},
		{
			name: "sdk wrapper with openai metadata",
			body: `{
				"model": "o1-mini",
				"usage": {"promptTokens": 500, "completionTokens": 120},
				"providerMetadata": {
					"openai": {"cachedPromptTokens": 200, "reasoningTokens": 100}
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 300,
				PromptCacheHitTokens:  200,
				ReasoningTokens:       100,
				CompletionTokens:      20,
				TotalInputTokens:      500,
				TotalOutputTokens:     120,
				Model:                 "o1-mini",
			},
		},
		{
			name: "sdk wrapper without metadata",
			body: `{"usage": {"promptTokens": 80, "completionTokens": 20}}`,
			want: TokenUsage{
				PromptCacheMissTokens: 80,
				CompletionTokens:      20,
				TotalInputTokens:      80,
				TotalOutputTokens:     20,
			},
		},
		{
			name: "mistral generic usage",
			body: `{
				"model": "mistral-large-latest",
				"usage": {"promptTokens": 400, "completionTokens": 90, "prompt_tokens": 999}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 400,
				CompletionTokens:      90,
				TotalInputTokens:      400,
				TotalOutputTokens:     90,
				Model:                 "mistral-large-latest",
			},
		},
		{
			name: "anthropic snake_case usage",
			body: `{
				"model": "claude-3-5-sonnet-20241022",
				"usage": {
					"input_tokens": 100,
					"output_tokens": 60,
					"cache_read_input_tokens": 40,
					"cache_creation_input_tokens": 25
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens:  100,
				PromptCacheHitTokens:   40,
				PromptCacheWriteTokens: 25,
				CompletionTokens:       60,
				TotalInputTokens:       165,
				TotalOutputTokens:      60,
				Model:                  "claude-3-5-sonnet-20241022",
			},
		},
		{
			name: "openai reasoning decomposed from completion",
			body: `{
				"model": "o1-preview",
				"usage": {
					"prompt_tokens": 50,
					"completion_tokens": 300,
					"completion_tokens_details": {"reasoning_tokens": 220}
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 50,
				ReasoningTokens:       220,
				CompletionTokens:      80,
				TotalInputTokens:      50,
				TotalOutputTokens:     300,
				Model:                 "o1-preview",
			},
		},
		{
			name: "usageMetadata flat gemini counts",
			body: `{
				"model": "gemini-2.0-flash",
				"usageMetadata": {"promptTokenCount": 150, "candidatesTokenCount": 70}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 150,
				CompletionTokens:      70,
				TotalInputTokens:      150,
				TotalOutputTokens:     70,
				Model:                 "gemini-2.0-flash",
			},
		},
		{
			name: "usageMetadata anthropic style",
			body: `{
				"usageMetadata": {
					"input_tokens": 30,
					"output_tokens": 12,
					"cache_read_input_tokens": 8
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 30,
				PromptCacheHitTokens:  8,
				CompletionTokens:      12,
				TotalInputTokens:      38,
				TotalOutputTokens:     12,
			},
		},
		{
			name: "usage_object shape",
			body: `{
				"model": "gpt-4o",
				"usage_object": {
					"prompt_tokens": 120,
					"completion_tokens": 75,
					"reasoningTokens": 25,
					"cache_read_tokens": 20
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 120,
				PromptCacheHitTokens:  20,
				ReasoningTokens:       25,
				CompletionTokens:      50,
				TotalInputTokens:      140,
				TotalOutputTokens:     75,
				Model:                 "gpt-4o",
			},
		},
		{
			name: "usage_object ignores snake_case reasoning detail",
			body: `{
				"usage_object": {
					"prompt_tokens": 10,
					"completion_tokens": 5,
					"completion_tokens_details": {"reasoning_tokens": 3}
				}
			}`,
			want: TokenUsage{
				PromptCacheMissTokens: 10,
				CompletionTokens:      5,
				TotalInputTokens:      10,
				TotalOutputTokens:     5,
			},
		},
		{
			name: "flat google token counts",
			body: `{"promptTokenCount": 44, "candidatesTokenCount": 11}`,
			want: TokenUsage{
				PromptCacheMissTokens: 44,
				CompletionTokens:      11,
				TotalInputTokens:      44,
				TotalOutputTokens:     11,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFromJSON([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Fatalf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestExtractFromJSON_Invariants(t *testing.T) {
	bodies := []string{
		`{"usage": {"prompt_tokens": 100, "completion_tokens": 40, "prompt_tokens_details": {"cached_tokens": 30}}}`,
		`{"usage": {"input_tokens": 7, "output_tokens": 3, "cache_read_input_tokens": 2, "cache_creation_input_tokens": 5}}`,
		`{"usage": {"promptTokens": 60, "completionTokens": 10}, "providerMetadata": {"openai": {"cachedPromptTokens": 15, "reasoningTokens": 4}}}`,
	}

	for _, body := range bodies {
		got, err := ExtractFromJSON([]byte(body))
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", body, err)
		}
		if got.TotalOutputTokens != got.ReasoningTokens+got.CompletionTokens {
			t.Errorf("output total invariant violated: %+v", got)
		}
		wantInput := got.PromptCacheMissTokens + got.PromptCacheHitTokens + got.PromptCacheWriteTokens
		if got.TotalInputTokens != wantInput {
			t.Errorf("input total invariant violated: %+v", got)
		}
	}
}

func TestExtractFromJSON_Idempotent(t *testing.T) {
	body := []byte(`{"model": "gpt-4o", "usage": {"prompt_tokens": 9, "completion_tokens": 4}}`)

	first, err := ExtractFromJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ExtractFromJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *first != *second {
		t.Fatalf("extraction not idempotent: %+v vs %+v", *first, *second)
	}
}

func TestExtractFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"nil body", nil},
		{"empty body", []byte("")},
		{"whitespace body", []byte("  \n ")},
		{"invalid JSON", []byte("{not json")},
		{"empty object", []byte("{}")},
		{"usage-less payload", []byte(`{"model": "gpt-4", "choices": []}`)},
		{"all-zero usage", []byte(`{"usage": {"prompt_tokens": 0, "completion_tokens": 0}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractFromJSON(tt.body)
			if err == nil {
				t.Fatal("expected error, got none")
			}
			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Fatalf("expected *ExtractionError, got %T", err)
			}
		})
	}
}

func TestExtractFromJSON_NoUsageSentinel(t *testing.T) {
	_, err := ExtractFromJSON([]byte(`{}`))
	if !errors.Is(err, ErrNoUsage) {
		t.Fatalf("expected ErrNoUsage, got %v", err)
	}
}

func TestExtractFromJSON_PartialUsageIsNotAnError(t *testing.T) {
	got, err := ExtractFromJSON([]byte(`{"usage": {"completion_tokens": 12}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CompletionTokens != 12 || got.TotalInputTokens != 0 {
		t.Fatalf("got %+v", got)
	}
}

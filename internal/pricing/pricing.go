// Package pricing provides the per-model price table: LiteLLM-format pricing
// records, loading and refreshing the table from the public registry, and
// resolving model names to records through a fallback chain.
package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Record holds the per-token USD rates for one model, in the field layout of
// the public model-price registry. Input and output rates are always set;
// cache rates default to zero when a provider has no cache discount. The
// tiered rates are optional and kick in once context size crosses the named
// threshold; at most one threshold family is populated per model in practice,
// and the 200k family takes precedence when both appear.
type Record struct {
	InputCostPerToken  float64 `json:"input_cost_per_token"`
	OutputCostPerToken float64 `json:"output_cost_per_token"`

	CacheReadInputTokenCost     float64 `json:"cache_read_input_token_cost,omitempty"`
	CacheCreationInputTokenCost float64 `json:"cache_creation_input_token_cost,omitempty"`

	InputCostPerTokenAbove200k  *float64 `json:"input_cost_per_token_above_200k_tokens,omitempty"`
	OutputCostPerTokenAbove200k *float64 `json:"output_cost_per_token_above_200k_tokens,omitempty"`
	InputCostPerTokenAbove128k  *float64 `json:"input_cost_per_token_above_128k_tokens,omitempty"`
	OutputCostPerTokenAbove128k *float64 `json:"output_cost_per_token_above_128k_tokens,omitempty"`
}

// Table is an immutable model-name → pricing lookup. It is loaded once and
// treated as read-only process-wide configuration; refreshes happen out of
// band by replacing the data file, not by mutating a live table.
type Table struct {
	records map[string]Record
	// keys holds the record keys in sorted order so the suffix-scan fallback
	// in Resolve is deterministic across loads. The registry itself gives no
	// meaningful ordering; first match in sorted order wins.
	keys []string
}

// NewTable builds a table from explicit records. Keys are lowercased, the
// registry's key convention.
func NewTable(records map[string]Record) *Table {
	t := &Table{records: make(map[string]Record, len(records))}
	for key, rec := range records {
		t.records[strings.ToLower(key)] = rec
	}
	t.keys = make([]string, 0, len(t.records))
	for key := range t.records {
		t.keys = append(t.keys, key)
	}
	sort.Strings(t.keys)
	return t
}

// Parse deserializes raw registry JSON into a Table. The registry document
// maps model keys to pricing records; the "sample_spec" documentation entry
// and entries whose fields do not decode as pricing data are skipped rather
// than failing the whole table.
func Parse(raw []byte) (*Table, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing price table JSON: %w", err)
	}

	records := make(map[string]Record, len(entries))
	for key, data := range entries {
		if key == "sample_spec" {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records[key] = rec
	}

	return NewTable(records), nil
}

// Load reads a price table from a local JSON file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading price table: %w", err)
	}
	return Parse(raw)
}

// Len returns the number of priced models in the table.
func (t *Table) Len() int {
	return len(t.records)
}

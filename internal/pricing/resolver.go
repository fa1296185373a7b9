package pricing

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when a model name resolves to no pricing record
// after every fallback strategy. Non-retriable: the model is unpriced, not
// temporarily unavailable.
type NotFoundError struct {
	Model string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pricing found for model %q", e.Model)
}

// providerPrefixes maps bare model-name prefixes to the provider qualifier
// the registry keys them under. The registry uses provider-qualified keys for
// some families (mistral/...) but bare names for others (claude-*, gpt-*,
// gemini-*), so a naive case-insensitive lookup alone under-matches.
var providerPrefixes = []struct {
	prefix    string
	qualifier string
}{
	{"mistral-", "mistral/"},
}

// resolver is one pure lookup strategy in the fallback chain. A nil result
// means "not mine, try the next one".
type resolver func(t *Table, normalized string) *Record

// resolvers is the ordered fallback chain tried by Resolve.
var resolvers = []resolver{
	resolveQualified,
	resolveExact,
	resolveBySuffix,
}

// Resolve maps a model name to its pricing record. The name is lowercased,
// trimmed, and run through the fallback chain: provider-qualified remapping,
// exact lookup of the original name, and finally a scan comparing the name
// against each key with its provider prefix stripped. Fails with
// *NotFoundError when nothing matches.
func (t *Table) Resolve(model string) (*Record, error) {
	normalized := strings.ToLower(strings.TrimSpace(model))

	for _, resolve := range resolvers {
		if rec := resolve(t, normalized); rec != nil {
			return rec, nil
		}
	}
	return nil, &NotFoundError{Model: model}
}

// resolveQualified remaps bare names whose family the registry stores under
// a provider qualifier, then looks the remapped key up exactly.
func resolveQualified(t *Table, normalized string) *Record {
	if strings.Contains(normalized, "/") {
		return nil
	}
	for _, p := range providerPrefixes {
		if strings.HasPrefix(normalized, p.prefix) {
			if rec, ok := t.records[p.qualifier+normalized]; ok {
				return &rec
			}
		}
	}
	return nil
}

// resolveExact looks up the original normalized name as-is, which keeps
// callers that already pass a provider-qualified name working.
func resolveExact(t *Table, normalized string) *Record {
	if rec, ok := t.records[normalized]; ok {
		return &rec
	}
	return nil
}

// resolveBySuffix scans every table key, strips everything up to and
// including its last "/", and compares the remainder to the name. Keys are
// visited in sorted order, so when several provider-qualified keys share a
// suffix the first in sorted order wins.
func resolveBySuffix(t *Table, normalized string) *Record {
	for _, key := range t.keys {
		suffix := key
		if i := strings.LastIndex(key, "/"); i >= 0 {
			suffix = key[i+1:]
		}
		if suffix == normalized {
			rec := t.records[key]
			return &rec
		}
	}
	return nil
}

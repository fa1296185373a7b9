// Package cost computes a cost breakdown from normalized token counts and a
// pricing record: actual cost, the hypothetical cost had nothing been cached,
// the savings between the two, and cache statistics.
package cost

import (
	"github.com/augmentedmind/llm-cost-utils/internal/pricing"
)

// Tier thresholds used by the registry's tiered rate fields. The boundary is
// inclusive on the low side: a basis of exactly the threshold still bills at
// the base rate.
const (
	tierThreshold200k = 200_000
	tierThreshold128k = 128_000
)

// Breakdown is one full cost decomposition in USD.
// TotalCost is always the sum of the four parts.
type Breakdown struct {
	InputCost      float64 `json:"inputCost"`
	OutputCost     float64 `json:"outputCost"`
	CacheReadCost  float64 `json:"cacheReadCost"`
	CacheWriteCost float64 `json:"cacheWriteCost"`
	TotalCost      float64 `json:"totalCost"`
}

// Savings quantifies what caching saved versus the uncached hypothetical.
type Savings struct {
	InputSavings float64 `json:"inputSavings"`
	TotalSavings float64 `json:"totalSavings"`
	PercentSaved float64 `json:"percentSaved"`
}

// CacheStats describes how much of the request's input was served from cache.
// UncachedTokens counts cache-miss plus cache-write tokens: write tokens
// populate the cache for future requests but were not served from it here.
type CacheStats struct {
	HitRate          float64 `json:"hitRate"`
	TotalInputTokens int     `json:"totalInputTokens"`
	CachedTokens     int     `json:"cachedTokens"`
	UncachedTokens   int     `json:"uncachedTokens"`
}

// Analysis is the full output of a cost computation. These fields are the
// wire contract for downstream consumers and must remain stable.
type Analysis struct {
	ActualCost   Breakdown  `json:"actualCost"`
	UncachedCost Breakdown  `json:"uncachedCost"`
	Savings      Savings    `json:"savings"`
	CacheStats   CacheStats `json:"cacheStats"`
}

// Compute calculates the cost analysis for one request. Token counts are the
// fields of a normalized usage record: cache-miss input, total output,
// cache-hit input, and cache-write input. Counts are expected to be
// non-negative; negative inputs are not rejected and propagate into negative
// costs (callers normalizing via the usage extractor never produce them).
func Compute(rec *pricing.Record, cacheMissTokens, outputTokens, cacheHitTokens, cacheWriteTokens int) Analysis {
	// Actual cost. Cache-miss tokens size their own input tier; the output
	// tier is sized by the input context actually processed.
	actualInput := tieredCost(cacheMissTokens,
		rec.InputCostPerToken, rec.InputCostPerTokenAbove200k, rec.InputCostPerTokenAbove128k,
		cacheMissTokens)
	actualOutput := tieredCost(outputTokens,
		rec.OutputCostPerToken, rec.OutputCostPerTokenAbove200k, rec.OutputCostPerTokenAbove128k,
		cacheMissTokens+cacheHitTokens)
	cacheRead := float64(cacheHitTokens) * rec.CacheReadInputTokenCost
	cacheWrite := float64(cacheWriteTokens) * rec.CacheCreationInputTokenCost

	actual := Breakdown{
		InputCost:      actualInput,
		OutputCost:     actualOutput,
		CacheReadCost:  cacheRead,
		CacheWriteCost: cacheWrite,
		TotalCost:      actualInput + actualOutput + cacheRead + cacheWrite,
	}

	// Uncached hypothetical: every input token, cache-write tokens included,
	// billed as fresh input. The larger total is also the tier basis, since
	// without caching it could cross a boundary the actual count did not.
	totalInputIfUncached := cacheMissTokens + cacheHitTokens + cacheWriteTokens
	uncachedInput := tieredCost(totalInputIfUncached,
		rec.InputCostPerToken, rec.InputCostPerTokenAbove200k, rec.InputCostPerTokenAbove128k,
		totalInputIfUncached)
	uncachedOutput := tieredCost(outputTokens,
		rec.OutputCostPerToken, rec.OutputCostPerTokenAbove200k, rec.OutputCostPerTokenAbove128k,
		totalInputIfUncached)

	uncached := Breakdown{
		InputCost:  uncachedInput,
		OutputCost: uncachedOutput,
		TotalCost:  uncachedInput + uncachedOutput,
	}

	savings := Savings{
		InputSavings: uncached.InputCost - actual.InputCost,
		TotalSavings: uncached.TotalCost - actual.TotalCost,
	}
	if uncached.TotalCost > 0 {
		savings.PercentSaved = savings.TotalSavings / uncached.TotalCost * 100
	}

	stats := CacheStats{
		TotalInputTokens: totalInputIfUncached,
		CachedTokens:     cacheHitTokens,
		UncachedTokens:   cacheMissTokens + cacheWriteTokens,
	}
	if totalInputIfUncached > 0 {
		stats.HitRate = float64(cacheHitTokens) / float64(totalInputIfUncached)
	}

	return Analysis{
		ActualCost:   actual,
		UncachedCost: uncached,
		Savings:      savings,
		CacheStats:   stats,
	}
}

// tieredCost prices a token count at the base rate or a tier rate, depending
// on where basisTokens falls. The basis is a separate parameter because
// output-token pricing tiers off the input context size, not the output count
// itself. The 200k rate takes precedence over the 128k rate when a record
// carries both; only one is expected in practice.
func tieredCost(tokens int, baseRate float64, above200k, above128k *float64, basisTokens int) float64 {
	switch {
	case above200k != nil:
		if basisTokens > tierThreshold200k {
			return float64(tokens) * *above200k
		}
	case above128k != nil:
		if basisTokens > tierThreshold128k {
			return float64(tokens) * *above128k
		}
	}
	return float64(tokens) * baseRate
}

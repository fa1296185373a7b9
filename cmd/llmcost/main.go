// Package main is the entry point for the llmcost CLI. It reads a provider
// response body from a file or stdin, normalizes its token usage, and prints
// the cost analysis against the local price table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/augmentedmind/llm-cost-utils/config"
	"github.com/augmentedmind/llm-cost-utils/internal/cost"
	"github.com/augmentedmind/llm-cost-utils/internal/logging"
	"github.com/augmentedmind/llm-cost-utils/internal/pricing"
	"github.com/augmentedmind/llm-cost-utils/internal/usage"
	"github.com/augmentedmind/llm-cost-utils/internal/version"
)

// report is the combined JSON output of one run.
type report struct {
	Usage *usage.TokenUsage `json:"usage"`
	Cost  *cost.Analysis    `json:"cost,omitempty"`
}

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	pricesPath := flag.String("prices", "", "Price table JSON file (defaults to PRICE_TABLE_PATH)")
	modelFlag := flag.String("model", "", "Override the model name extracted from the payload")
	format := flag.String("format", "table", "Output format: table or json")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Logging.Format, cfg.Logging.Level)
	slog.SetDefault(logger)

	body, err := readBody(flag.Arg(0))
	if err != nil {
		slog.Error("failed to read response body", "error", err)
		os.Exit(1)
	}

	tokenUsage, err := usage.Extract(body)
	if err != nil {
		slog.Error("failed to extract usage", "error", err)
		os.Exit(1)
	}

	model := tokenUsage.Model
	if *modelFlag != "" {
		model = *modelFlag
	}

	out := report{Usage: tokenUsage}

	path := *pricesPath
	if path == "" {
		path = cfg.PriceTable.Path
	}

	if model == "" {
		slog.Warn("payload carries no model name and none was given, skipping cost analysis")
	} else if table, err := pricing.Load(path); err != nil {
		slog.Warn("price table unavailable, skipping cost analysis", "path", path, "error", err)
	} else if rec, err := table.Resolve(model); err != nil {
		slog.Warn("model not priced, skipping cost analysis", "model", model, "error", err)
	} else {
		analysis := cost.Compute(rec,
			tokenUsage.PromptCacheMissTokens,
			tokenUsage.TotalOutputTokens,
			tokenUsage.PromptCacheHitTokens,
			tokenUsage.PromptCacheWriteTokens)
		out.Cost = &analysis
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			slog.Error("failed to encode output", "error", err)
			os.Exit(1)
		}
		return
	}

	printTables(model, out)
}

// readBody reads the response body from the named file, or stdin when no
// argument was given.
func readBody(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printTables(model string, out report) {
	u := out.Usage

	usageTable := tablewriter.NewTable(os.Stdout)
	usageTable.Header([]string{"Model", "Cache Miss", "Cache Hit", "Cache Write", "Reasoning", "Completion", "Input Total", "Output Total"})
	usageTable.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	usageTable.Append([]string{
		model,
		fmt.Sprint(u.PromptCacheMissTokens),
		fmt.Sprint(u.PromptCacheHitTokens),
		fmt.Sprint(u.PromptCacheWriteTokens),
		fmt.Sprint(u.ReasoningTokens),
		fmt.Sprint(u.CompletionTokens),
		fmt.Sprint(u.TotalInputTokens),
		fmt.Sprint(u.TotalOutputTokens),
	})
	usageTable.Render()

	if out.Cost == nil {
		return
	}
	a := out.Cost

	fmt.Println()
	costTable := tablewriter.NewTable(os.Stdout)
	costTable.Header([]string{"", "Input", "Output", "Cache Read", "Cache Write", "Total"})
	costTable.Append(costRow("Actual", a.ActualCost))
	costTable.Append(costRow("Uncached", a.UncachedCost))
	costTable.Render()

	fmt.Printf("\nSaved %s (%.1f%%), cache hit rate %.1f%%\n",
		usd(a.Savings.TotalSavings),
		a.Savings.PercentSaved,
		a.CacheStats.HitRate*100)
}

func costRow(label string, b cost.Breakdown) []string {
	return []string{
		label,
		usd(b.InputCost),
		usd(b.OutputCost),
		usd(b.CacheReadCost),
		usd(b.CacheWriteCost),
		usd(b.TotalCost),
	}
}

func usd(v float64) string {
	return fmt.Sprintf("$%.6f", v)
}

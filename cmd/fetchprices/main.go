// Package main is the entry point for the fetchprices tool: the out-of-band
// process that downloads the public model-price registry and overwrites the
// local price table. The cost path itself never touches the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/augmentedmind/llm-cost-utils/config"
	"github.com/augmentedmind/llm-cost-utils/internal/logging"
	"github.com/augmentedmind/llm-cost-utils/internal/pricing"
	"github.com/augmentedmind/llm-cost-utils/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	urlFlag := flag.String("url", "", "Registry URL (defaults to PRICE_TABLE_URL)")
	outFlag := flag.String("out", "", "Output file (defaults to PRICE_TABLE_PATH)")
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

	url := *urlFlag
	if url == "" {
		url = cfg.PriceTable.URL
	}
	out := *outFlag
	if out == "" {
		out = cfg.PriceTable.Path
	}
	timeout := time.Duration(cfg.PriceTable.FetchTimeoutSeconds) * time.Second

	slog.Info("fetching price table", "url", url, "timeout", timeout)

	table, raw, err := pricing.Fetch(context.Background(), url, timeout)
	if err != nil {
		slog.Error("fetch failed", "error", err)
		os.Exit(1)
	}
	if table == nil {
		slog.Error("no registry URL configured")
		os.Exit(1)
	}

	if err := writeFileAtomic(out, raw); err != nil {
		slog.Error("failed to write price table", "path", out, "error", err)
		os.Exit(1)
	}

	slog.Info("price table updated", "path", out, "models", table.Len(), "bytes", len(raw))
}

// writeFileAtomic writes via a temp file and rename so a reader never sees a
// half-written table.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

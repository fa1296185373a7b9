package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxRegistrySize caps how much of the registry document we are willing to
// read. The live document is a few MB; anything past this is a broken or
// hostile response.
const maxRegistrySize = 10 * 1024 * 1024

// Fetch downloads and parses the price registry from the given URL.
// Returns the parsed Table and the raw JSON bytes so callers can persist the
// document for the next run. Returns nil, nil, nil if the URL is empty
// (refresh disabled).
//
// This is the out-of-band refresh path: nothing in the extraction or cost
// path performs network I/O.
func Fetch(ctx context.Context, url string, timeout time.Duration) (*Table, []byte, error) {
	if url == "" {
		return nil, nil, nil
	}

	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching price table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	limited := io.LimitReader(resp.Body, maxRegistrySize+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(raw) > maxRegistrySize {
		return nil, nil, fmt.Errorf("response body too large (exceeds %d bytes)", maxRegistrySize)
	}

	table, err := Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	return table, raw, nil
}

package usage

import (
	"bytes"
	"io"
)

// StreamWrapper wraps an io.ReadCloser so a response stream can be passed
// through to its real consumer while usage is captured on the side. Every
// chunk read through the wrapper is buffered; when the stream is closed the
// buffered text is run through the extractor and the result handed to the
// callback. Extraction failures are reported through the same callback with
// a nil record, never by failing the stream itself.
type StreamWrapper struct {
	io.ReadCloser
	onUsage func(*TokenUsage, error)
	buffer  bytes.Buffer
	closed  bool
}

// WrapStream creates a usage-capturing wrapper around a response stream.
// onUsage is invoked exactly once, from Close.
func WrapStream(stream io.ReadCloser, onUsage func(*TokenUsage, error)) *StreamWrapper {
	return &StreamWrapper{
		ReadCloser: stream,
		onUsage:    onUsage,
	}
}

// Read passes data through to the caller and keeps a copy for extraction.
func (w *StreamWrapper) Read(p []byte) (int, error) {
	n, err := w.ReadCloser.Read(p)
	if n > 0 {
		w.buffer.Write(p[:n])
	}
	return n, err
}

// Close extracts usage from everything read so far, reports it, and closes
// the underlying stream. Safe to call more than once; later calls are no-ops.
func (w *StreamWrapper) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.onUsage != nil {
		usage, err := Extract(w.buffer.Bytes())
		w.onUsage(usage, err)
	}

	return w.ReadCloser.Close()
}

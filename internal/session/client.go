package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/koopa0/sessionmcp/internal/log"
)

// LogClient is a Client that records outbound events through the
// logger. Used by the standalone serve command when no harness client
// is wired in.
type LogClient struct {
	logger log.Logger
}

// NewLogClient creates a LogClient writing to the given logger.
func NewLogClient(logger log.Logger) *LogClient {
	return &LogClient{logger: logger}
}

// SendMessage logs the event and reports success.
func (c *LogClient) SendMessage(_ context.Context, ev Event) error {
	c.logger.Info("session event",
		"kind", ev.Kind,
		"summary", ev.Summary,
		"event_id", ev.ID)
	return nil
}

// WriterClient is a Client that appends events as JSON lines to a
// writer, typically a pipe the harness reads.
type WriterClient struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterClient creates a WriterClient writing to w.
func NewWriterClient(w io.Writer) *WriterClient {
	return &WriterClient{w: w}
}

// SendMessage encodes the event as a single JSON line.
func (c *WriterClient) SendMessage(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding session event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing session event: %w", err)
	}
	return nil
}

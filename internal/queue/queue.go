// Package queue defines the boundary between the session control
// server and the reminder queue owned by the conversation loop of the
// enclosing process.
//
// The server never owns the queue. It holds an Accessor, a
// back-reference resolved fresh on every use, because the server is
// typically started before the conversation loop that owns the queue
// has been constructed.
package queue

import (
	"context"
	"sync"
)

// Mode describes how an injected message should be treated
// downstream. It is opaque to this module: the server forwards the
// configured value untouched with every push, or Mode{} when nothing
// was configured.
type Mode map[string]any

// Queue is a push-capable sink for messages to be re-injected into a
// live conversation.
type Queue interface {
	// Push appends text to the queue with the given mode.
	Push(ctx context.Context, text string, mode Mode) error
}

// Accessor resolves the live queue at call time. It returns nil while
// the owning process has not constructed the queue yet. Callers must
// resolve it on every use, never cache the result.
type Accessor func() Queue

// Item is one queued message.
type Item struct {
	Text string
	Mode Mode
}

// Buffer is an in-memory FIFO Queue. It is the reference
// implementation used by the standalone serve command and by tests;
// an embedding harness normally supplies its own queue.
//
// The zero value is not useful - use NewBuffer.
type Buffer struct {
	mu    sync.Mutex
	items []Item
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Push appends a message to the buffer. It honors context
// cancellation but otherwise cannot fail.
func (b *Buffer) Push(ctx context.Context, text string, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, Item{Text: text, Mode: mode})
	return nil
}

// Next removes and returns the oldest queued item. The second return
// value is false when the buffer is empty.
func (b *Buffer) Next() (Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return Item{}, false
	}

	item := b.items[0]
	b.items = b.items[1:]
	return item, true
}

// Len returns the number of queued items.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

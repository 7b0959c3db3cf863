// Package session delivers session-level events to the harness that
// owns the enclosing conversation.
//
// The server only needs the narrow Client capability; delivery
// guarantees beyond the returned error are the harness's
// responsibility.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Event kinds understood by the harness.
const (
	// KindSummary carries a new human-readable session title.
	KindSummary = "summary"
)

// ErrNilClient indicates a Notifier was constructed without a client.
var ErrNilClient = errors.New("session client is nil")

// Event is one outbound session message.
type Event struct {
	Kind    string `json:"kind"`
	Summary string `json:"summary,omitempty"`
	ID      string `json:"id"`
}

// Client is the outbound-message capability of the external session
// client. Implementations are supplied by the owning process.
type Client interface {
	SendMessage(ctx context.Context, ev Event) error
}

// Notifier turns title changes into summary events on a Client.
type Notifier struct {
	client Client
}

// NewNotifier creates a Notifier bound to the given client.
func NewNotifier(client Client) (*Notifier, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &Notifier{client: client}, nil
}

// SendSummary forwards a summary event carrying the new title. Each
// event gets a fresh unique identifier.
func (n *Notifier) SendSummary(ctx context.Context, title string) error {
	return n.client.SendMessage(ctx, Event{
		Kind:    KindSummary,
		Summary: title,
		ID:      uuid.NewString(),
	})
}

// file: internal/transport/memory.go
package transport

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// ChannelTransport is an in-process Transport. Closing one end makes reads on the
// other end report a closed transport once buffered messages are drained.
type ChannelTransport struct {
	incoming <-chan []byte
	outgoing chan<- []byte

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewPipe returns two connected transports.
func NewPipe() (client, server *ChannelTransport) {
	clientToServer := make(chan []byte, 64)
	serverToClient := make(chan []byte, 64)
	client = &ChannelTransport{incoming: serverToClient, outgoing: clientToServer}
	server = &ChannelTransport{incoming: clientToServer, outgoing: serverToClient}
	return client, server
}

// ReadMessage returns the next message from the peer, validated like NDJSONTransport does.
func (t *ChannelTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, NewTimeoutError("read", ctx.Err())
	case msg, ok := <-t.incoming:
		if !ok {
			return nil, NewClosedError("read")
		}
		if err := ValidateMessage(msg); err != nil {
			return msg, err
		}
		return msg, nil
	}
}

// WriteMessage delivers message to the peer.
func (t *ChannelTransport) WriteMessage(ctx context.Context, message []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return NewClosedError("write")
	}
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message[:100])
	}
	msg := append([]byte(nil), message...)
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "context cancelled during write")
	case t.outgoing <- msg:
		return nil
	}
}

// Close stops writes and signals end of stream to the peer.
func (t *ChannelTransport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.outgoing)
		t.mu.Unlock()
	})
	return nil
}

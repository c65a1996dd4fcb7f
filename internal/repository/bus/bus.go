// Package bus carries relay envelopes between gateway processes. Each process
// subscribes to its own address; publishing to an address delivers to
// whichever process owns the target connection.
package bus

import "context"

// Envelope is a frame in flight to a connection owned by another process.
// The frame is already encoded; the receiving process only needs to find the
// local connection and write it. A Close envelope instead orders the owning
// process to drop the connection, used to evict superseded sockets.
type Envelope struct {
	ConnectionID string `json:"connection_id"`
	Frame        []byte `json:"frame,omitempty"`
	Close        bool   `json:"close,omitempty"`
	CloseReason  string `json:"close_reason,omitempty"`
}

// Handler consumes envelopes delivered to this process.
type Handler func(Envelope)

// Bus is the cross-process channel. Delivery is at-most-once: envelopes to a
// process that is down or has dropped the connection are lost, and
// the remote party reconciles on its next connect.
type Bus interface {
	Publish(ctx context.Context, processID string, env Envelope) error
	Subscribe(ctx context.Context, processID string, handler Handler) error
	Close() error
}

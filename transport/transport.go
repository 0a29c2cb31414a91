// Package transport defines the swappable-transport interface the core
// requires (Connection/Substream) and a concrete TLS+yamux implementation.
// Per spec, TLS/Noise/QUIC/Yamux are external collaborators specified only
// at their interface - this package provides that interface plus the one
// concrete binding the example pack can ground: TLS for encryption,
// github.com/libp2p/go-yamux/v5 for substream multiplexing.
package transport

import (
	"context"
	"io"
)

// Substream is one independent full-duplex byte channel carried by a
// multiplexed Connection.
type Substream interface {
	io.Reader
	io.Writer
	io.Closer
}

// Connection is one authenticated, encrypted byte connection, capable of
// yielding many independent Substreams.
type Connection interface {
	// AcceptSubstream blocks until a new substream arrives, or ctx is
	// done, or the connection is closed.
	AcceptSubstream(ctx context.Context) (Substream, error)
	Close() error
}

// Acceptor yields authenticated, encrypted Connections.
type Acceptor interface {
	Accept(ctx context.Context) (Connection, error)
	Close() error
}
